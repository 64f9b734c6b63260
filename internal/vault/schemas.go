package vault

// Property is a JSON schema property
type Property struct {
	Type  string    `json:"type"`
	Items *Property `json:"items,omitempty"`
}

// Schema is the JSON schema of a collection's documents
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Schemas returns the stock schemas offered when creating a collection
func Schemas() map[string]Schema {
	return map[string]Schema{
		"contactBook": {
			Type: "object",
			Properties: map[string]Property{
				"name":    {Type: "string"},
				"email":   {Type: "string"},
				"phone":   {Type: "string"},
				"age":     {Type: "number"},
				"address": {Type: "string"},
			},
			Required: []string{"name"},
		},
		"personalData": {
			Type: "object",
			Properties: map[string]Property{
				"fieldName":  {Type: "string"},
				"fieldValue": {Type: "string"},
				"category":   {Type: "string"},
				"tags":       {Type: "array", Items: &Property{Type: "string"}},
			},
			Required: []string{"fieldName", "fieldValue"},
		},
		"healthData": {
			Type: "object",
			Properties: map[string]Property{
				"recordType": {Type: "string"},
				"value":      {Type: "string"},
				"unit":       {Type: "string"},
				"timestamp":  {Type: "number"},
				"notes":      {Type: "string"},
			},
			Required: []string{"recordType", "value"},
		},
	}
}
