package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"roster/internal/domain"
	"roster/internal/domain/models"
	"roster/internal/domain/repositories"
	"roster/internal/repository/memory"
	"roster/internal/schema"
)

func newRosterService(repo repositories.PeopleRepository) *RosterService {
	logger := testLogger()
	person := schema.NewPersonConverter(logger)
	roster := schema.NewRosterConverter(person, logger)
	return NewRosterService(repo, person, roster, logger).(*RosterService)
}

func TestExportAllV3(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPeopleRepository()
	svc := newRosterService(repo)
	seedPerson(t, repo, "alice", models.StatusInvited, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))
	seedPerson(t, repo, "bob", models.StatusFounding, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC))

	env, err := svc.ExportAll(ctx, models.SchemaV3)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if env.Version != models.SchemaV3 {
		t.Errorf("version = %v", env.Version)
	}
	if len(env.PeopleMap) != 2 {
		t.Fatalf("people = %v", env.PeopleMap)
	}
	for _, id := range []string{"alice", "bob"} {
		if _, ok := env.PeopleMap[id]; !ok {
			t.Errorf("missing person %q", id)
		}
	}
}

func TestExportAllV2OrdersByDate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPeopleRepository()
	svc := newRosterService(repo)
	seedPerson(t, repo, "alice", models.StatusInvited, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))
	seedPerson(t, repo, "bob", models.StatusFounding, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC))

	env, err := svc.ExportAll(ctx, models.SchemaV2)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if env.Version != models.SchemaV2 {
		t.Errorf("version = %v", env.Version)
	}
	if len(env.PeopleList) != 2 {
		t.Fatalf("people = %v", env.PeopleList)
	}
	if env.PeopleList[0]["id"] != "bob" || env.PeopleList[1]["id"] != "alice" {
		t.Errorf("order = [%v, %v], want [bob, alice]",
			env.PeopleList[0]["id"], env.PeopleList[1]["id"])
	}
	for _, doc := range env.PeopleList {
		if _, ok := doc[schema.SortDateKey]; ok {
			t.Errorf("%s leaked into the export", schema.SortDateKey)
		}
	}
}

func TestImportAllReplacesCollection(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPeopleRepository()
	svc := newRosterService(repo)
	seedPerson(t, repo, "stale", models.StatusLater, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))

	var env models.Envelope
	raw := `{"version": 3, "people": {
		"alice": {"statusHistory": [{"status": "invited", "date": "2013-01-01T00:00:00Z", "by": "bob"}]},
		"bob": {"statusHistory": [{"status": "founding", "date": "2011-01-01T00:00:00Z"}]}
	}}`
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	if err := svc.ImportAll(ctx, &env); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alice" || ids[1] != "bob" {
		t.Errorf("ids = %v, want [alice bob]", ids)
	}
	if _, err := repo.Get(ctx, "stale"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old record survived the import: %v", err)
	}
}

func TestImportV2StoresV3AndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPeopleRepository()
	svc := newRosterService(repo)

	// the sequence order deliberately disagrees with the date order
	var env models.Envelope
	raw := `{"people": [
		{"id": "young", "status": "later", "join_date": "2014-02-01T00:00:00Z"},
		{"id": "old", "status": "founding", "join_date": "2011-01-01T00:00:00Z"}
	]}`
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Version != models.SchemaV2 {
		t.Fatalf("untagged envelope decoded as %v, want v2", env.Version)
	}

	if err := svc.ImportAll(ctx, &env); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}

	// records are stored in the v3 shape
	record, err := repo.Get(ctx, "young")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Version != models.SchemaV3 {
		t.Errorf("stored version = %v, want v3", record.Version)
	}
	history, err := models.StatusHistoryOf(record.Document)
	if err != nil || len(history) != 1 || history[0].Status != models.StatusLater {
		t.Errorf("stored history = %v, %v", history, err)
	}

	// a v2 export restores the original sequence order
	out, err := svc.ExportAll(ctx, models.SchemaV2)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(out.PeopleList) != 2 || out.PeopleList[0]["id"] != "young" || out.PeopleList[1]["id"] != "old" {
		t.Errorf("export order = %v, want [young old]", out.PeopleList)
	}
}
