package schema

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"roster/internal/domain"
	"roster/internal/domain/models"
)

func testRosterConverter() *RosterConverter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRosterConverter(NewPersonConverter(logger), logger)
}

func TestRosterConvertIdentity(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{Version: models.SchemaV3, PeopleMap: map[string]models.JSONMap{}}

	got, err := c.Convert(env, models.SchemaV3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != env {
		t.Error("identity conversion should return the envelope unchanged")
	}
}

func TestRosterConvertV2V3(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{
		Version: models.SchemaV2,
		PeopleList: []models.JSONMap{
			mustDoc(t, `{"id": "zeta", "status": "later", "join_date": "2014-01-01T00:00:00Z"}`),
			mustDoc(t, `{"id": "alpha", "status": "founding", "join_date": "2011-01-01T00:00:00Z"}`),
		},
	}

	got, err := c.Convert(env, models.SchemaV3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != models.SchemaV3 {
		t.Errorf("version = %v", got.Version)
	}
	if len(got.PeopleMap) != 2 {
		t.Fatalf("people = %v", got.PeopleMap)
	}

	// each record keeps its sequence position for a later round trip
	for id, want := range map[string]int{"zeta": 0, "alpha": 1} {
		doc, ok := got.PeopleMap[id]
		if !ok {
			t.Fatalf("missing person %q", id)
		}
		if doc[orderKey] != want {
			t.Errorf("%s order = %v, want %d", id, doc[orderKey], want)
		}
	}
}

func TestRosterConvertV2V3RequiresID(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{
		Version:    models.SchemaV2,
		PeopleList: []models.JSONMap{mustDoc(t, `{"status": "later"}`)},
	}

	_, err := c.Convert(env, models.SchemaV3)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestRosterConvertV3V2OrdersByRecordedPosition(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{
		Version: models.SchemaV3,
		PeopleMap: map[string]models.JSONMap{
			"alpha": mustDoc(t, `{"_peopleV2Order": 1, "statusHistory": [{"status": "founding", "date": "2011-01-01T00:00:00Z"}]}`),
			"zeta":  mustDoc(t, `{"_peopleV2Order": 0, "statusHistory": [{"status": "later", "date": "2014-01-01T00:00:00Z"}]}`),
		},
	}

	got, err := c.Convert(env, models.SchemaV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, got.PeopleList, "zeta", "alpha")
}

func TestRosterConvertV3V2OrdersByDateWithoutPositions(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{
		Version: models.SchemaV3,
		PeopleMap: map[string]models.JSONMap{
			"young": mustDoc(t, `{"statusHistory": [{"status": "later", "date": "2014-01-01T00:00:00Z"}]}`),
			"old":   mustDoc(t, `{"statusHistory": [{"status": "founding", "date": "2011-01-01T00:00:00Z"}]}`),
		},
	}

	got, err := c.Convert(env, models.SchemaV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, got.PeopleList, "old", "young")
}

func TestRosterConvertV3V2FallsBackWhenOnePositionMissing(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{
		Version: models.SchemaV3,
		PeopleMap: map[string]models.JSONMap{
			"tagged":   mustDoc(t, `{"_peopleV2Order": 0, "statusHistory": [{"status": "later", "date": "2014-01-01T00:00:00Z"}]}`),
			"untagged": mustDoc(t, `{"statusHistory": [{"status": "founding", "date": "2011-01-01T00:00:00Z"}]}`),
		},
	}

	// one record without a position disqualifies position ordering entirely
	got, err := c.Convert(env, models.SchemaV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, got.PeopleList, "untagged", "tagged")
}

func TestRosterConvertV3V2StripsTransientKeys(t *testing.T) {
	c := testRosterConverter()
	env := &models.Envelope{
		Version: models.SchemaV3,
		PeopleMap: map[string]models.JSONMap{
			"alpha": mustDoc(t, `{"_peopleV2Order": 0, "statusHistory": [{"status": "founding", "date": "2011-01-01T00:00:00Z"}]}`),
		},
	}

	got, err := c.Convert(env, models.SchemaV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := got.PeopleList[0]
	if _, ok := doc[SortDateKey]; ok {
		t.Errorf("%s leaked into the v2 output", SortDateKey)
	}
	if _, ok := doc[orderKey]; ok {
		t.Errorf("%s leaked into the v2 output", orderKey)
	}
	if doc["id"] != "alpha" {
		t.Errorf("id = %v, want alpha", doc["id"])
	}
}

func assertOrder(t *testing.T, people []models.JSONMap, want ...string) {
	t.Helper()
	if len(people) != len(want) {
		t.Fatalf("got %d people, want %d", len(people), len(want))
	}
	for i, id := range want {
		if people[i]["id"] != id {
			t.Errorf("position %d = %v, want %s", i, people[i]["id"], id)
		}
	}
}
