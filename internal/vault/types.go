package vault

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a node answers with a payload of unexpected shape
var ErrMalformedResponse = errors.New("malformed vault response")

// CollectionType distinguishes builder-owned from user-owned collections
type CollectionType string

const (
	CollectionStandard CollectionType = "standard"
	CollectionOwned    CollectionType = "owned"
)

// QueryStatus is the state of a query run
type QueryStatus string

const (
	QueryPending   QueryStatus = "pending"
	QueryRunning   QueryStatus = "running"
	QueryCompleted QueryStatus = "completed"
	QueryFailed    QueryStatus = "failed"
)

// Kind selects the payload shape expected from a call
type Kind int

const (
	KindAck Kind = iota
	KindCreatedID
	KindCreatedRecords
	KindCollections
	KindRecords
	KindRecord
	KindReferences
	KindQueryRun
)

// Payload is one of the known response shapes. The set is closed.
type Payload interface {
	payload()
}

// Ack is an empty success answer
type Ack struct{}

// CreatedID is the id of a newly created collection, query or query run
type CreatedID struct {
	ID string
}

// CreatedRecords lists ids of created records
type CreatedRecords struct {
	Created []string `json:"created"`
	Errors  []string `json:"errors,omitempty"`
}

// Collection describes a collection
type Collection struct {
	ID     string          `json:"_id"`
	Name   string          `json:"name"`
	Type   CollectionType  `json:"type"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// Collections is a list of collections
type Collections []Collection

// Record is a stored document. Only _id is interpreted; the rest stays raw.
type Record struct {
	ID     string
	Fields map[string]json.RawMessage
}

// Records is a list of records
type Records []Record

// RecordReference points to a user-owned record
type RecordReference struct {
	Builder    string `json:"builder"`
	Collection string `json:"collection"`
	Document   string `json:"document"`
}

// References is a list of owned record references
type References []RecordReference

// QueryRun is the state of one query execution
type QueryRun struct {
	ID     string          `json:"_id"`
	Status QueryStatus     `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Errors []string        `json:"errors,omitempty"`
}

func (Ack) payload()            {}
func (CreatedID) payload()      {}
func (CreatedRecords) payload() {}
func (Collections) payload()    {}
func (Record) payload()         {}
func (Records) payload()        {}
func (References) payload()     {}
func (QueryRun) payload()       {}

// MarshalJSON writes the record back as a flat document
func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(r.Fields)+1)
	for k, v := range r.Fields {
		doc[k] = v
	}
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	doc["_id"] = id
	return json.Marshal(doc)
}

// Decode validates the data member of a node answer against the expected kind
func Decode(kind Kind, data json.RawMessage) (Payload, error) {
	switch kind {
	case KindAck:
		return Ack{}, nil

	case KindCreatedID:
		var id string
		if err := json.Unmarshal(data, &id); err == nil && id != "" {
			return CreatedID{ID: id}, nil
		}
		var obj struct {
			ID    string `json:"id"`
			MgoID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, malformed("created id", err)
		}
		if obj.ID == "" {
			obj.ID = obj.MgoID
		}
		if obj.ID == "" {
			return nil, malformed("created id", errors.New("missing id"))
		}
		return CreatedID{ID: obj.ID}, nil

	case KindCreatedRecords:
		var out CreatedRecords
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, malformed("created records", err)
		}
		if out.Created == nil {
			out.Created = []string{}
		}
		return out, nil

	case KindCollections:
		var out Collections
		if err := decodeList(data, &out); err != nil {
			return nil, malformed("collections", err)
		}
		for i, c := range out {
			if c.ID == "" {
				return nil, malformed("collections", fmt.Errorf("entry %d has no _id", i))
			}
			if c.Type != CollectionStandard && c.Type != CollectionOwned {
				return nil, malformed("collections", fmt.Errorf("entry %d has unknown type %q", i, c.Type))
			}
		}
		return out, nil

	case KindRecords:
		var raw []map[string]json.RawMessage
		if err := decodeList(data, &raw); err != nil {
			return nil, malformed("records", err)
		}
		out := make(Records, 0, len(raw))
		for i, doc := range raw {
			r, err := toRecord(doc)
			if err != nil {
				return nil, malformed("records", fmt.Errorf("entry %d: %w", i, err))
			}
			out = append(out, r)
		}
		return out, nil

	case KindRecord:
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
			return nil, malformed("record", err)
		}
		r, err := toRecord(doc)
		if err != nil {
			return nil, malformed("record", err)
		}
		return r, nil

	case KindReferences:
		var out References
		if err := decodeList(data, &out); err != nil {
			return nil, malformed("references", err)
		}
		for i, ref := range out {
			if ref.Collection == "" || ref.Document == "" {
				return nil, malformed("references", fmt.Errorf("entry %d is incomplete", i))
			}
		}
		return out, nil

	case KindQueryRun:
		var out QueryRun
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, malformed("query run", err)
		}
		switch out.Status {
		case QueryPending, QueryRunning, QueryCompleted, QueryFailed:
		case "complete":
			out.Status = QueryCompleted
		case "error":
			out.Status = QueryFailed
		default:
			return nil, malformed("query run", fmt.Errorf("unknown status %q", out.Status))
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown payload kind %d", kind)
}

// decodeList accepts null as an empty list
func decodeList(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func toRecord(doc map[string]json.RawMessage) (Record, error) {
	rawID, ok := doc["_id"]
	if !ok {
		return Record{}, errors.New("missing _id")
	}
	var id string
	if err := json.Unmarshal(rawID, &id); err != nil || id == "" {
		return Record{}, errors.New("_id must be a non-empty string")
	}
	delete(doc, "_id")
	return Record{ID: id, Fields: doc}, nil
}

func malformed(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, what, err)
}
