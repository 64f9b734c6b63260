// Package vault connects a stored wallet to the remote SecretVaults
// network: it opens sessions from encrypted records and drives
// collection, record, access and query calls through a Client.
package vault

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by a Client when the resource is already registered
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned by a Client when the resource does not exist remotely
	ErrNotFound = errors.New("not found")
)

// Permissions granted on an owned record
type Permissions struct {
	Read    bool `json:"read"`
	Write   bool `json:"write"`
	Execute bool `json:"execute"`
}

// ACL grants permissions on an owned record to a grantee identifier
type ACL struct {
	Grantee string `json:"grantee"`
	Permissions
}

// NewCollection describes a collection to create
type NewCollection struct {
	ID     string         `json:"_id"`
	Name   string         `json:"name"`
	Type   CollectionType `json:"type"`
	Schema Schema         `json:"schema"`
}

// OwnedRecords are user-owned documents written through a builder's delegation
type OwnedRecords struct {
	Owner           string           `json:"owner"`
	Collection      string           `json:"collection"`
	Data            []map[string]any `json:"data"`
	ACL             ACL              `json:"acl"`
	DelegationToken string           `json:"-"`
}

// NewQuery describes a stored aggregation pipeline
type NewQuery struct {
	ID         string           `json:"_id"`
	Collection string           `json:"collection"`
	Name       string           `json:"name"`
	Variables  map[string]any   `json:"variables"`
	Pipeline   []map[string]any `json:"pipeline"`
}

// Client is the remote vault collaborator. Implementations only
// see identity material through the keypair they were built with.
type Client interface {
	// builder operations
	RegisterBuilder(ctx context.Context, name string) error
	CreateCollection(ctx context.Context, c NewCollection) (string, error)
	ListCollections(ctx context.Context) ([]Collection, error)
	CreateRecords(ctx context.Context, collection string, data []map[string]any) ([]string, error)
	FindRecords(ctx context.Context, collection string, filter map[string]any) ([]Record, error)
	UpdateRecords(ctx context.Context, collection string, filter, update map[string]any) error
	DeleteRecords(ctx context.Context, collection string, filter map[string]any) error
	CreateQuery(ctx context.Context, q NewQuery) (string, error)
	RunQuery(ctx context.Context, queryID string, variables map[string]any) (string, error)
	QueryRunResult(ctx context.Context, runID string) (QueryRun, error)

	// user operations
	CreateOwnedRecords(ctx context.Context, r OwnedRecords) ([]string, error)
	ListOwnedReferences(ctx context.Context) ([]RecordReference, error)
	ReadOwnedRecord(ctx context.Context, collection, document string) (Record, error)
	DeleteOwnedRecord(ctx context.Context, collection, document string) error
	GrantAccess(ctx context.Context, collection, document string, acl ACL) error
	RevokeAccess(ctx context.Context, collection, document, grantee string) error
}
