package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQueryFailed  = errors.New("query failed")
	ErrQueryTimeout = errors.New("query polling timeout")
)

// RegisterBuilder registers the builder profile, treating an existing profile as success
func RegisterBuilder(ctx context.Context, c Client, name string) error {
	err := c.RegisterBuilder(ctx, name)
	if err != nil && !errors.Is(err, ErrAlreadyExists) {
		return fmt.Errorf("failed to register builder profile: %w", err)
	}
	return nil
}

// CreateCollection creates a collection of the given type under a random id
func CreateCollection(ctx context.Context, c Client, typ CollectionType, name string, schema Schema) (string, error) {
	if typ != CollectionStandard && typ != CollectionOwned {
		return "", fmt.Errorf("unknown collection type %q", typ)
	}

	id, err := c.CreateCollection(ctx, NewCollection{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   typ,
		Schema: schema,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create collection: %w", err)
	}
	return id, nil
}

// CreateQuery stores a pipeline under a random id
func CreateQuery(ctx context.Context, c Client, collection, name string, pipeline []map[string]any, variables map[string]any) (string, error) {
	if variables == nil {
		variables = map[string]any{}
	}

	id, err := c.CreateQuery(ctx, NewQuery{
		ID:         uuid.NewString(),
		Collection: collection,
		Name:       name,
		Variables:  variables,
		Pipeline:   pipeline,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create query: %w", err)
	}
	return id, nil
}

// PollQuery waits for a query run to finish.
// It checks at most attempts times, sleeping interval between checks.
func PollQuery(ctx context.Context, c Client, runID string, attempts int, interval time.Duration) (json.RawMessage, error) {
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		run, err := c.QueryRunResult(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll query result: %w", err)
		}

		switch run.Status {
		case QueryCompleted:
			return run.Result, nil
		case QueryFailed:
			return nil, fmt.Errorf("%w: %s", ErrQueryFailed, strings.Join(run.Errors, "; "))
		}

		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, ErrQueryTimeout
}

// RunQuery starts a stored query and waits for its result
func RunQuery(ctx context.Context, c Client, queryID string, variables map[string]any, attempts int, interval time.Duration) (json.RawMessage, error) {
	if variables == nil {
		variables = map[string]any{}
	}

	runID, err := c.RunQuery(ctx, queryID, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	return PollQuery(ctx, c, runID, attempts, interval)
}
