package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/AlexZinkM/nilz-wallet/internal/logger"
	"github.com/AlexZinkM/nilz-wallet/internal/vault"
	"github.com/AlexZinkM/nilz-wallet/nillion"
)

const (
	pathRegisterBuilder = "/v1/builders/register"
	pathCollections     = "/v1/collections"
	pathDataCreate      = "/v1/data/create"
	pathDataFind        = "/v1/data/find"
	pathDataUpdate      = "/v1/data/update"
	pathDataDelete      = "/v1/data/delete"
	pathQueries         = "/v1/queries"
	pathQueriesRun      = "/v1/queries/run"
	pathUserData        = "/v1/users/data"
	pathUserDataCreate  = "/v1/users/data/create"
	pathACLGrant        = "/v1/users/data/acl/grant"
	pathACLRevoke       = "/v1/users/data/acl/revoke"

	maxResponseBytes = 4 << 20
)

// APIError is a non-2xx answer from a nilDB node
type APIError struct {
	Node     string
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("node %s: status %d: %s", e.Node, e.Status, msg)
}

// Is maps conflict and not-found answers to the vault sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case vault.ErrAlreadyExists:
		return e.Status == http.StatusConflict
	case vault.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// envelope is the common answer shape of nilDB nodes
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

var _ vault.Client = (*NildbClient)(nil)

// NildbClient talks to the nilDB nodes of one network on behalf of one keypair.
// Writes go to every node, reads are served by the first node.
type NildbClient struct {
	nodes   []string
	client  *http.Client
	keypair *nillion.Keypair
	apiKey  string
	now     func() time.Time
	log     zerolog.Logger
}

// NewNildbClient creates a new client for the given nodes
func NewNildbClient(kp *nillion.Keypair, nodes []string, apiKey string, timeout time.Duration, log zerolog.Logger) (*NildbClient, error) {
	if kp == nil {
		return nil, errors.New("keypair is required")
	}
	if len(nodes) == 0 {
		return nil, errors.New("at least one nilDB node is required")
	}
	for _, n := range nodes {
		if _, err := url.ParseRequestURI(n); err != nil {
			return nil, fmt.Errorf("invalid node url %q: %w", n, err)
		}
	}

	return &NildbClient{
		nodes:   append([]string(nil), nodes...),
		client:  &http.Client{Timeout: timeout},
		keypair: kp,
		apiKey:  apiKey,
		now:     time.Now,
		log:     logger.Module(log, "nildb"),
	}, nil
}

// Dialer returns a vault.Dialer using the network table's node list
func Dialer(apiKey string, timeout time.Duration, log zerolog.Logger) vault.Dialer {
	return func(kp *nillion.Keypair, network nillion.Network) (vault.Client, error) {
		cfg, err := nillion.NetworkConfig(network)
		if err != nil {
			return nil, err
		}
		return NewNildbClient(kp, cfg.NildbNodes, apiKey, timeout, log)
	}
}

// RegisterBuilder registers the keypair's identifier as a builder
func (c *NildbClient) RegisterBuilder(ctx context.Context, name string) error {
	body := map[string]string{"did": c.keypair.DID(), "name": name}
	_, err := c.write(ctx, http.MethodPost, pathRegisterBuilder, body, "", vault.KindAck)
	return err
}

// CreateCollection creates a collection on every node
func (c *NildbClient) CreateCollection(ctx context.Context, col vault.NewCollection) (string, error) {
	if _, err := c.write(ctx, http.MethodPost, pathCollections, col, "", vault.KindAck); err != nil {
		return "", err
	}
	return col.ID, nil
}

// ListCollections lists the builder's collections
func (c *NildbClient) ListCollections(ctx context.Context) ([]vault.Collection, error) {
	p, err := c.read(ctx, http.MethodGet, pathCollections, nil, vault.KindCollections)
	if err != nil {
		return nil, err
	}
	return p.(vault.Collections), nil
}

// CreateRecords writes standard records
func (c *NildbClient) CreateRecords(ctx context.Context, collection string, data []map[string]any) ([]string, error) {
	body := map[string]any{"collection": collection, "data": data}
	p, err := c.write(ctx, http.MethodPost, pathDataCreate, body, "", vault.KindCreatedRecords)
	if err != nil {
		return nil, err
	}
	return p.(vault.CreatedRecords).Created, nil
}

// FindRecords searches a standard collection
func (c *NildbClient) FindRecords(ctx context.Context, collection string, filter map[string]any) ([]vault.Record, error) {
	body := map[string]any{"collection": collection, "filter": orEmpty(filter)}
	p, err := c.read(ctx, http.MethodPost, pathDataFind, body, vault.KindRecords)
	if err != nil {
		return nil, err
	}
	return p.(vault.Records), nil
}

// UpdateRecords applies update to every record matching filter
func (c *NildbClient) UpdateRecords(ctx context.Context, collection string, filter, update map[string]any) error {
	body := map[string]any{"collection": collection, "filter": orEmpty(filter), "update": update}
	_, err := c.write(ctx, http.MethodPost, pathDataUpdate, body, "", vault.KindAck)
	return err
}

// DeleteRecords deletes every record matching filter
func (c *NildbClient) DeleteRecords(ctx context.Context, collection string, filter map[string]any) error {
	body := map[string]any{"collection": collection, "filter": orEmpty(filter)}
	_, err := c.write(ctx, http.MethodPost, pathDataDelete, body, "", vault.KindAck)
	return err
}

// CreateQuery stores a query on every node
func (c *NildbClient) CreateQuery(ctx context.Context, q vault.NewQuery) (string, error) {
	if _, err := c.write(ctx, http.MethodPost, pathQueries, q, "", vault.KindAck); err != nil {
		return "", err
	}
	return q.ID, nil
}

// RunQuery starts a query run and returns its id
func (c *NildbClient) RunQuery(ctx context.Context, queryID string, variables map[string]any) (string, error) {
	body := map[string]any{"_id": queryID, "variables": orEmpty(variables)}
	p, err := c.read(ctx, http.MethodPost, pathQueriesRun, body, vault.KindCreatedID)
	if err != nil {
		return "", err
	}
	return p.(vault.CreatedID).ID, nil
}

// QueryRunResult fetches the state of a query run
func (c *NildbClient) QueryRunResult(ctx context.Context, runID string) (vault.QueryRun, error) {
	p, err := c.read(ctx, http.MethodGet, pathQueriesRun+"/"+url.PathEscape(runID), nil, vault.KindQueryRun)
	if err != nil {
		return vault.QueryRun{}, err
	}
	return p.(vault.QueryRun), nil
}

// CreateOwnedRecords writes user-owned records, authorised by the builder's delegation token when present
func (c *NildbClient) CreateOwnedRecords(ctx context.Context, r vault.OwnedRecords) ([]string, error) {
	if r.Owner == "" {
		r.Owner = c.keypair.DID()
	}
	p, err := c.write(ctx, http.MethodPost, pathUserDataCreate, r, r.DelegationToken, vault.KindCreatedRecords)
	if err != nil {
		return nil, err
	}
	return p.(vault.CreatedRecords).Created, nil
}

// ListOwnedReferences lists references to records owned by the keypair
func (c *NildbClient) ListOwnedReferences(ctx context.Context) ([]vault.RecordReference, error) {
	p, err := c.read(ctx, http.MethodGet, pathUserData, nil, vault.KindReferences)
	if err != nil {
		return nil, err
	}
	return p.(vault.References), nil
}

// ReadOwnedRecord reads one owned record
func (c *NildbClient) ReadOwnedRecord(ctx context.Context, collection, document string) (vault.Record, error) {
	p, err := c.read(ctx, http.MethodGet, ownedPath(collection, document), nil, vault.KindRecord)
	if err != nil {
		return vault.Record{}, err
	}
	return p.(vault.Record), nil
}

// DeleteOwnedRecord deletes one owned record
func (c *NildbClient) DeleteOwnedRecord(ctx context.Context, collection, document string) error {
	_, err := c.write(ctx, http.MethodDelete, ownedPath(collection, document), nil, "", vault.KindAck)
	return err
}

// GrantAccess adds an ACL entry to an owned record
func (c *NildbClient) GrantAccess(ctx context.Context, collection, document string, acl vault.ACL) error {
	body := map[string]any{"collection": collection, "document": document, "acl": acl}
	_, err := c.write(ctx, http.MethodPost, pathACLGrant, body, "", vault.KindAck)
	return err
}

// RevokeAccess removes the grantee's ACL entry from an owned record
func (c *NildbClient) RevokeAccess(ctx context.Context, collection, document, grantee string) error {
	body := map[string]any{"collection": collection, "document": document, "grantee": grantee}
	_, err := c.write(ctx, http.MethodPost, pathACLRevoke, body, "", vault.KindAck)
	return err
}

func ownedPath(collection, document string) string {
	return pathUserData + "/" + url.PathEscape(collection) + "/" + url.PathEscape(document)
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// read sends the request to the first node only
func (c *NildbClient) read(ctx context.Context, method, path string, body any, kind vault.Kind) (vault.Payload, error) {
	data, err := c.do(ctx, c.nodes[0], method, path, body, "")
	if err != nil {
		return nil, err
	}
	return vault.Decode(kind, data)
}

// write sends the request to every node and decodes the first node's answer
func (c *NildbClient) write(ctx context.Context, method, path string, body any, bearer string, kind vault.Kind) (vault.Payload, error) {
	results := make([]json.RawMessage, len(c.nodes))

	g, gctx := errgroup.WithContext(ctx)
	for i, node := range c.nodes {
		g.Go(func() error {
			data, err := c.do(gctx, node, method, path, body, bearer)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vault.Decode(kind, results[0])
}

func (c *NildbClient) do(ctx context.Context, node, method, path string, body any, bearer string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(node, "/")+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if bearer == "" {
		bearer, err = signToken(c.keypair, node, c.now())
		if err != nil {
			return nil, err
		}
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s%s: %w", node, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("%w: %v", vault.ErrMalformedResponse, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Node: node, Status: resp.StatusCode, Messages: env.Errors}
	}

	c.log.Debug().Str("node", node).Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("nildb call")
	return env.Data, nil
}
