package cache

import "encoding/json"

// JSONSerializer stores values as JSON.
type JSONSerializer struct{}

// NewJSONSerializer creates a JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize encodes v.
func (s *JSONSerializer) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

// Deserialize decodes data into v.
func (s *JSONSerializer) Deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}

// Name returns the serializer name.
func (s *JSONSerializer) Name() string {
	return "json"
}
