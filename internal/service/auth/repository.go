package auth

import (
	"context"
	"errors"

	"remote-support-backend/internal/database"
	"remote-support-backend/internal/model"
)

var (
	ErrNotFound      = errors.New("auth repository: not found")
	ErrAlreadyExists = errors.New("auth repository: already exists")
)

type Repository interface {
	CreateHost(ctx context.Context, host model.HostItem) error
	GetHost(ctx context.Context, code string) (model.HostItem, error)
}

type DynamoRepository struct {
	db    *database.DynamoDBClient
	table string
}

func NewDynamoRepository(db *database.DynamoDBClient, table string) Repository {
	if table == "" {
		table = model.HostsTable
	}
	return &DynamoRepository{db: db, table: table}
}

func (r *DynamoRepository) CreateHost(ctx context.Context, host model.HostItem) error {
	err := r.db.PutItemIfAbsent(ctx, r.table, "code", host)
	if errors.Is(err, database.ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	return err
}

func (r *DynamoRepository) GetHost(ctx context.Context, code string) (model.HostItem, error) {
	var host model.HostItem
	err := r.db.GetItem(ctx, r.table, database.StringKey("code", code), &host)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.HostItem{}, ErrNotFound
		}
		return model.HostItem{}, err
	}
	return host, nil
}
