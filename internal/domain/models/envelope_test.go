package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"roster/internal/domain"
)

func TestEnvelopeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		version SchemaVersion
		wantErr error
	}{
		{
			name:    "untagged envelope is v2",
			raw:     `{"people": [{"id": "alice"}]}`,
			version: SchemaV2,
		},
		{
			name:    "tagged v3 envelope",
			raw:     `{"version": 3, "people": {"alice": {}}}`,
			version: SchemaV3,
		},
		{
			name:    "explicit v2 tag",
			raw:     `{"version": 2, "people": []}`,
			version: SchemaV2,
		},
		{
			name:    "unknown version",
			raw:     `{"version": 7, "people": {}}`,
			wantErr: domain.ErrUnsupportedConversion,
		},
		{
			name:    "no people entry",
			raw:     `{"version": 3}`,
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "v2 people must be a sequence",
			raw:     `{"people": {"alice": {}}}`,
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "v3 people must be a mapping",
			raw:     `{"version": 3, "people": []}`,
			wantErr: domain.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			err := json.Unmarshal([]byte(tt.raw), &env)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Version != tt.version {
				t.Errorf("version = %v, want %v", env.Version, tt.version)
			}
		})
	}
}

func TestEnvelopeMarshal(t *testing.T) {
	v2 := Envelope{Version: SchemaV2, PeopleList: []JSONMap{{"id": "alice"}}}
	data, err := json.Marshal(v2)
	if err != nil {
		t.Fatalf("marshal v2: %v", err)
	}
	if strings.Contains(string(data), "version") {
		t.Errorf("v2 envelope must not carry a version tag: %s", data)
	}

	v3 := Envelope{Version: SchemaV3, PeopleMap: map[string]JSONMap{"alice": {}}}
	data, err = json.Marshal(v3)
	if err != nil {
		t.Fatalf("marshal v3: %v", err)
	}
	if !strings.Contains(string(data), `"version":3`) {
		t.Errorf("v3 envelope must carry its version tag: %s", data)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := Envelope{Version: SchemaV3, PeopleMap: map[string]JSONMap{"alice": {"name": "Alice"}}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Envelope
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Version != SchemaV3 || out.PeopleMap["alice"]["name"] != "Alice" {
		t.Errorf("round trip = %+v", out)
	}
}
