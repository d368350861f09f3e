package room

import "time"

type Role string

const (
	RoleNone   Role = ""
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHost:
		return RoleHost, nil
	case RoleClient, RoleNone:
		return RoleClient, nil
	}
	return RoleNone, newError(ErrorCodeInvalidRole, "role must be host or client")
}

// HostPolicy decides how the host seat of a room is assigned.
type HostPolicy string

const (
	// PolicyExplicitRole trusts the role carried by join-room and rejects a
	// second host with host-occupied.
	PolicyExplicitRole HostPolicy = "explicit-role"
	// PolicyFirstConnection makes whoever opens a room its host and joins
	// everybody after that as a client.
	PolicyFirstConnection HostPolicy = "first-connection"
)

func ParseHostPolicy(s string) (HostPolicy, error) {
	switch HostPolicy(s) {
	case "", PolicyExplicitRole:
		return PolicyExplicitRole, nil
	case PolicyFirstConnection:
		return PolicyFirstConnection, nil
	}
	return "", newError(ErrorCodeInvalidPolicy, "unknown host policy "+s)
}

type ErrorCode string

const (
	ErrorCodeMissingCode   ErrorCode = "missing-code"
	ErrorCodeHostOccupied  ErrorCode = "host-occupied"
	ErrorCodeNotMember     ErrorCode = "not-a-member"
	ErrorCodeInvalidRole   ErrorCode = "invalid-role"
	ErrorCodeInvalidPolicy ErrorCode = "invalid-policy"
)

type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsCode reports whether err is a room error carrying code.
func IsCode(err error, code ErrorCode) bool {
	re, ok := err.(*Error)
	return ok && re.Code == code
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

var DefaultScreen = Dimensions{Width: 1280, Height: 720}

type Quality struct {
	Level     string  `json:"quality"`
	FrameRate float64 `json:"frameRate"`
}

// Room is a snapshot of one session. Values returned by the Registry are
// copies and never alias registry state.
type Room struct {
	Code           string     `json:"code"`
	HostID         string     `json:"hostId,omitempty"`
	Clients        []string   `json:"clients"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	Screen         Dimensions `json:"screen"`
	Quality        Quality    `json:"quality"`
}

func (r Room) HasHost() bool {
	return r.HostID != ""
}

// Members returns the host first, then clients in join order.
func (r Room) Members() []string {
	out := make([]string, 0, len(r.Clients)+1)
	if r.HostID != "" {
		out = append(out, r.HostID)
	}
	return append(out, r.Clients...)
}

func (r Room) empty() bool {
	return r.HostID == "" && len(r.Clients) == 0
}

func (r Room) clone() Room {
	r.Clients = append([]string(nil), r.Clients...)
	return r
}

// Membership is the side-table entry kept for every joined connection.
type Membership struct {
	Code string
	Role Role
}

type JoinResult struct {
	Code string
	Role Role
	// HostID is the room host after the join, possibly the joiner itself.
	HostID string
	// PriorClients lists clients that were already in the room.
	PriorClients []string
	Created      bool
	// Noop is set when the connection was already joined with the same role.
	Noop bool
	// Left describes the room the connection implicitly left, if any.
	Left *LeaveResult
}

type LeaveResult struct {
	ConnID string
	Code   string
	Role   Role
	// HostID is the remaining host, empty when the leaver was host.
	HostID string
	// Clients are the remaining clients.
	Clients []string
	Deleted bool
}

type Expired struct {
	Code    string
	Members []string
}
