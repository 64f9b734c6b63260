package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuilder(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, RegisterBuilder(ctx, &fakeClient{}, "builder"))
	assert.NoError(t, RegisterBuilder(ctx, &fakeClient{registerErr: fmt.Errorf("node said: %w", ErrAlreadyExists)}, "builder"))

	err := RegisterBuilder(ctx, &fakeClient{registerErr: errors.New("boom")}, "builder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCreateCollection(t *testing.T) {
	ctx := context.Background()
	c := &fakeClient{}

	id1, err := CreateCollection(ctx, c, CollectionStandard, "contacts", Schemas()["contactBook"])
	require.NoError(t, err)
	id2, err := CreateCollection(ctx, c, CollectionOwned, "health", Schemas()["healthData"])
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	require.Len(t, c.collections, 2)
	assert.Equal(t, CollectionStandard, c.collections[0].Type)
	assert.Equal(t, CollectionOwned, c.collections[1].Type)
	assert.Equal(t, []string{"name"}, c.collections[0].Schema.Required)

	_, err = CreateCollection(ctx, c, "secret", "x", Schema{})
	assert.Error(t, err)
}

func TestCreateQuery_DefaultsVariables(t *testing.T) {
	c := &fakeClient{}
	_, err := CreateQuery(context.Background(), c, "coll", "adults", []map[string]any{{"$match": map[string]any{}}}, nil)
	require.NoError(t, err)
	require.Len(t, c.queries, 1)
	assert.NotNil(t, c.queries[0].Variables)
}

func TestPollQuery(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		runs     []QueryRun
		attempts int
		wantErr  error
		want     string
		calls    int
	}{
		{
			name:     "completes after pending",
			runs:     []QueryRun{{Status: QueryPending}, {Status: QueryRunning}, {Status: QueryCompleted, Result: json.RawMessage(`[1]`)}},
			attempts: 5,
			want:     `[1]`,
			calls:    3,
		},
		{
			name:     "fails",
			runs:     []QueryRun{{Status: QueryFailed, Errors: []string{"bad stage"}}},
			attempts: 5,
			wantErr:  ErrQueryFailed,
			calls:    1,
		},
		{
			name:     "times out",
			runs:     []QueryRun{{Status: QueryPending}},
			attempts: 3,
			wantErr:  ErrQueryTimeout,
			calls:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{runs: tt.runs}
			got, err := PollQuery(ctx, c, "run-1", tt.attempts, time.Millisecond)
			assert.Equal(t, tt.calls, c.runCalls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestPollQuery_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &fakeClient{runs: []QueryRun{{Status: QueryPending}}}
	_, err := PollQuery(ctx, c, "run-1", 10, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, c.runCalls)
}

func TestPollQuery_PropagatesClientError(t *testing.T) {
	c := &fakeClient{resultErr: ErrNotFound}
	_, err := PollQuery(context.Background(), c, "run-1", 3, time.Millisecond)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunQuery(t *testing.T) {
	c := &fakeClient{runs: []QueryRun{{Status: QueryCompleted, Result: json.RawMessage(`{"n":2}`)}}}
	got, err := RunQuery(context.Background(), c, "q-1", nil, 3, time.Millisecond)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(got))
}
