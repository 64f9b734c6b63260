package vault

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Valid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		data string
		want Payload
	}{
		{"ack", KindAck, ``, Ack{}},
		{"created id string", KindCreatedID, `"abc"`, CreatedID{ID: "abc"}},
		{"created id object", KindCreatedID, `{"id":"abc"}`, CreatedID{ID: "abc"}},
		{"created id mongo", KindCreatedID, `{"_id":"abc"}`, CreatedID{ID: "abc"}},
		{"created records", KindCreatedRecords, `{"created":["a","b"]}`, CreatedRecords{Created: []string{"a", "b"}}},
		{"created records empty", KindCreatedRecords, `{}`, CreatedRecords{Created: []string{}}},
		{"collections null", KindCollections, `null`, Collections(nil)},
		{"collections", KindCollections, `[{"_id":"c1","name":"n","type":"owned"}]`, Collections{{ID: "c1", Name: "n", Type: CollectionOwned}}},
		{"references", KindReferences, `[{"builder":"did:nil:b","collection":"c","document":"d"}]`, References{{Builder: "did:nil:b", Collection: "c", Document: "d"}}},
		{"query complete alias", KindQueryRun, `{"_id":"r","status":"complete"}`, QueryRun{ID: "r", Status: QueryCompleted}},
		{"query error alias", KindQueryRun, `{"_id":"r","status":"error","errors":["x"]}`, QueryRun{ID: "r", Status: QueryFailed, Errors: []string{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.kind, json.RawMessage(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Records(t *testing.T) {
	got, err := Decode(KindRecords, json.RawMessage(`[{"_id":"r1","name":"alice","age":30}]`))
	require.NoError(t, err)

	records := got.(Records)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)
	assert.JSONEq(t, `"alice"`, string(records[0].Fields["name"]))
	assert.NotContains(t, records[0].Fields, "_id")

	out, err := json.Marshal(records[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"r1","name":"alice","age":30}`, string(out))
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		data string
	}{
		{"created id missing", KindCreatedID, `{}`},
		{"collections not a list", KindCollections, `{"_id":"x"}`},
		{"collection without id", KindCollections, `[{"name":"n","type":"owned"}]`},
		{"collection unknown type", KindCollections, `[{"_id":"c","type":"weird"}]`},
		{"record without id", KindRecords, `[{"name":"alice"}]`},
		{"record numeric id", KindRecord, `{"_id":5}`},
		{"record null", KindRecord, `null`},
		{"reference incomplete", KindReferences, `[{"builder":"b"}]`},
		{"query unknown status", KindQueryRun, `{"status":"exploded"}`},
		{"query not object", KindQueryRun, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.kind, json.RawMessage(tt.data))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}
