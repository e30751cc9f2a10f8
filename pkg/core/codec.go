package core

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec defines how the notes snapshot is encoded as text.
type Codec interface {
	Encode(notes []Note) (string, error)
	Decode(raw string) ([]Note, error)
}

// JSONCodec stores the snapshot as a JSON array. It is the default.
type JSONCodec struct{}

func (JSONCodec) Encode(notes []Note) (string, error) {
	data, err := json.Marshal(cloneNotes(notes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (JSONCodec) Decode(raw string) ([]Note, error) {
	var notes []Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return cloneNotes(notes), nil
}

// YAMLCodec stores the snapshot as a YAML sequence.
type YAMLCodec struct{}

func (YAMLCodec) Encode(notes []Note) (string, error) {
	data, err := yaml.Marshal(cloneNotes(notes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (YAMLCodec) Decode(raw string) ([]Note, error) {
	var notes []Note
	if err := yaml.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return cloneNotes(notes), nil
}

// CodecByName returns the codec registered for name ("json" or "yaml").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}
