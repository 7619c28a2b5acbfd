package models

import (
	"encoding/json"
	"fmt"

	"roster/internal/domain"
)

// JSONMap is the decoded form of a person's JSONB document
type JSONMap map[string]interface{}

// SchemaVersion is the closed set of document shapes a record can be in.
// There are exactly two: the flat v2 shape and the status-history v3 shape.
type SchemaVersion int

const (
	SchemaV2 SchemaVersion = 2
	SchemaV3 SchemaVersion = 3
)

// ParseSchemaVersion maps a raw version tag to a SchemaVersion
func ParseSchemaVersion(n int) (SchemaVersion, error) {
	switch n {
	case 2:
		return SchemaV2, nil
	case 3:
		return SchemaV3, nil
	default:
		return 0, fmt.Errorf("%w: unknown schema version %d", domain.ErrUnsupportedConversion, n)
	}
}

func (v SchemaVersion) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// Record is one member's document plus its stable identifier and the schema
// version governing the document at rest. The id is never derived from
// document content and stays stable across conversions.
type Record struct {
	ID       string        `json:"id"`
	Version  SchemaVersion `json:"version"`
	Document JSONMap       `json:"document"`
}

// Clone returns a deep copy of the document via a JSON round trip, so a
// caller can hand the copy out without aliasing stored state.
func (m JSONMap) Clone() (JSONMap, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	var out JSONMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	return out, nil
}
