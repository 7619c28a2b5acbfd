package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"roster/internal/domain"
	"roster/internal/domain/models"
)

// RosterConverter converts the whole-collection envelope between the v2
// ordered sequence and the v3 id-keyed mapping, delegating per-record work
// to a PersonConverter and handling collection-level ordering.
type RosterConverter struct {
	person *PersonConverter
	logger *slog.Logger
}

// NewRosterConverter creates a roster converter
func NewRosterConverter(person *PersonConverter, logger *slog.Logger) *RosterConverter {
	return &RosterConverter{person: person, logger: logger}
}

type rosterConversion func(*RosterConverter, *models.Envelope) (*models.Envelope, error)

var rosterConversions = map[conversionPair]rosterConversion{
	{models.SchemaV2, models.SchemaV3}: (*RosterConverter).convertV2V3,
	{models.SchemaV3, models.SchemaV2}: (*RosterConverter).convertV3V2,
}

// Convert converts an envelope to the target version. Identity conversions
// return the envelope unchanged.
func (c *RosterConverter) Convert(env *models.Envelope, to models.SchemaVersion) (*models.Envelope, error) {
	if env.Version == to {
		return env, nil
	}
	convert, ok := rosterConversions[conversionPair{From: env.Version, To: to}]
	if !ok {
		return nil, unsupported(env.Version, to)
	}
	return convert(c, env)
}

// convertV2V3 keys each person by its id and tags it with its original
// sequence position, so a later v3->v2 conversion is order-stable.
func (c *RosterConverter) convertV2V3(env *models.Envelope) (*models.Envelope, error) {
	people := make(map[string]models.JSONMap, len(env.PeopleList))
	for i, doc := range env.PeopleList {
		id, ok := doc["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: v2 person at position %d has no id", domain.ErrInvalidArgument, i)
		}
		converted, err := c.person.Convert(id, doc, models.SchemaV2, models.SchemaV3)
		if err != nil {
			return nil, err
		}
		converted[orderKey] = i
		people[id] = converted
	}
	return &models.Envelope{Version: models.SchemaV3, PeopleMap: people}, nil
}

type sortablePerson struct {
	doc      models.JSONMap
	order    float64
	hasOrder bool
	sortDate time.Time
}

// convertV3V2 converts every person and orders the resulting sequence: by
// the recorded v2 position when every record still carries one, otherwise
// by each record's first dated status event. The order keys are stripped
// from the output either way.
func (c *RosterConverter) convertV3V2(env *models.Envelope) (*models.Envelope, error) {
	people := make([]sortablePerson, 0, len(env.PeopleMap))
	allOrdered := true
	for id, doc := range env.PeopleMap {
		converted, err := c.person.Convert(id, doc, models.SchemaV3, models.SchemaV2)
		if err != nil {
			return nil, err
		}
		converted["id"] = id

		entry := sortablePerson{doc: converted}
		if order, ok := orderValue(doc[orderKey]); ok {
			entry.order = order
			entry.hasOrder = true
		} else {
			allOrdered = false
		}
		if date, ok := converted[SortDateKey].(time.Time); ok {
			entry.sortDate = date
		}
		people = append(people, entry)
	}

	if allOrdered {
		sort.SliceStable(people, func(i, j int) bool { return people[i].order < people[j].order })
	} else {
		if len(people) > 0 {
			c.logger.Debug("roster missing v2 positions, ordering by first status date")
		}
		sort.SliceStable(people, func(i, j int) bool { return people[i].sortDate.Before(people[j].sortDate) })
	}

	list := make([]models.JSONMap, len(people))
	for i, entry := range people {
		delete(entry.doc, SortDateKey)
		list[i] = entry.doc
	}
	return &models.Envelope{Version: models.SchemaV2, PeopleList: list}, nil
}

// orderValue reads a sequence position that may be an int (assigned here) or
// a float64 (decoded from JSON)
func orderValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
