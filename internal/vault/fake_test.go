package vault

import (
	"context"
	"sync"
)

// fakeClient records calls and serves canned answers
type fakeClient struct {
	mu sync.Mutex

	registerErr error
	collections []NewCollection
	queries     []NewQuery
	runs        []QueryRun
	runCalls    int
	resultErr   error
}

func (f *fakeClient) RegisterBuilder(context.Context, string) error { return f.registerErr }

func (f *fakeClient) CreateCollection(_ context.Context, c NewCollection) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections = append(f.collections, c)
	return c.ID, nil
}

func (f *fakeClient) ListCollections(context.Context) ([]Collection, error) { return nil, nil }

func (f *fakeClient) CreateRecords(context.Context, string, []map[string]any) ([]string, error) {
	return nil, nil
}

func (f *fakeClient) FindRecords(context.Context, string, map[string]any) ([]Record, error) {
	return nil, nil
}

func (f *fakeClient) UpdateRecords(context.Context, string, map[string]any, map[string]any) error {
	return nil
}

func (f *fakeClient) DeleteRecords(context.Context, string, map[string]any) error { return nil }

func (f *fakeClient) CreateQuery(_ context.Context, q NewQuery) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return q.ID, nil
}

func (f *fakeClient) RunQuery(context.Context, string, map[string]any) (string, error) {
	return "run-1", nil
}

func (f *fakeClient) QueryRunResult(context.Context, string) (QueryRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resultErr != nil {
		return QueryRun{}, f.resultErr
	}
	i := f.runCalls
	if i >= len(f.runs) {
		i = len(f.runs) - 1
	}
	f.runCalls++
	return f.runs[i], nil
}

func (f *fakeClient) CreateOwnedRecords(context.Context, OwnedRecords) ([]string, error) {
	return nil, nil
}

func (f *fakeClient) ListOwnedReferences(context.Context) ([]RecordReference, error) {
	return nil, nil
}

func (f *fakeClient) ReadOwnedRecord(context.Context, string, string) (Record, error) {
	return Record{}, nil
}

func (f *fakeClient) DeleteOwnedRecord(context.Context, string, string) error { return nil }

func (f *fakeClient) GrantAccess(context.Context, string, string, ACL) error { return nil }

func (f *fakeClient) RevokeAccess(context.Context, string, string, string) error { return nil }
