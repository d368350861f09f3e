package model

const HostsTable = "Hosts"

// HostItem is a registered support host. Code is the partition key.
type HostItem struct {
	Code      string `dynamodbav:"code"`
	PinHash   string `dynamodbav:"pinHash"`
	CreatedAt string `dynamodbav:"createdAt"`
}
