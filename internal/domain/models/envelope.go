package models

import (
	"encoding/json"
	"fmt"

	"roster/internal/domain"
)

// Envelope is the whole-collection document wrapping all records.
// v2 carries an ordered sequence of self-identifying documents,
// v3 a mapping from record id to document.
type Envelope struct {
	Version    SchemaVersion
	PeopleList []JSONMap          // populated for v2
	PeopleMap  map[string]JSONMap // populated for v3
}

// envelopeWire mirrors the on-disk shape before the version tag is resolved
type envelopeWire struct {
	Version *int            `json:"version"`
	People  json.RawMessage `json:"people"`
}

// UnmarshalJSON decodes either envelope shape. An absent version tag means
// v2, the format predating the tag.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire envelopeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	version := SchemaV2
	if wire.Version != nil {
		v, err := ParseSchemaVersion(*wire.Version)
		if err != nil {
			return err
		}
		version = v
	}

	if len(wire.People) == 0 {
		return fmt.Errorf("%w: envelope has no people entry", domain.ErrInvalidArgument)
	}

	e.Version = version
	e.PeopleList = nil
	e.PeopleMap = nil

	switch version {
	case SchemaV2:
		if err := json.Unmarshal(wire.People, &e.PeopleList); err != nil {
			return fmt.Errorf("%w: v2 people must be a sequence: %v", domain.ErrInvalidArgument, err)
		}
	case SchemaV3:
		if err := json.Unmarshal(wire.People, &e.PeopleMap); err != nil {
			return fmt.Errorf("%w: v3 people must be a mapping: %v", domain.ErrInvalidArgument, err)
		}
	}
	return nil
}

// MarshalJSON encodes the envelope in its wire shape. Only v3 carries the
// explicit version tag; the v2 format never had one.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.Version {
	case SchemaV2:
		people := e.PeopleList
		if people == nil {
			people = []JSONMap{}
		}
		return json.Marshal(map[string]interface{}{"people": people})
	case SchemaV3:
		people := e.PeopleMap
		if people == nil {
			people = map[string]JSONMap{}
		}
		return json.Marshal(map[string]interface{}{"version": int(SchemaV3), "people": people})
	default:
		return nil, fmt.Errorf("%w: envelope version %d", domain.ErrUnsupportedConversion, int(e.Version))
	}
}
