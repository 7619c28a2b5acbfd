package schema

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"roster/internal/domain/models"
)

// postfreezeCutoff is the historical moment the v2 format stopped admitting
// plain "later" members; a v3 "later" event dated strictly after it renders
// as "postfreeze" in v2.
var postfreezeCutoff = time.Date(2013, 11, 2, 17, 33, 45, 0, time.UTC)

// SortDateKey is the transient key a v3->v2 conversion attaches to each v2
// document so the roster converter can order the output sequence. It must
// be stripped before the v2 document is finalized.
const SortDateKey = "SORT_DATE"

// orderKey is the transient v2 position a v2->v3 roster conversion stores on
// each v3 document, making a later v3->v2 conversion order-stable.
const orderKey = "_peopleV2Order"

// PersonConverter converts one record's document between the v2 and v3
// shapes. Conversion always builds a new document; the input is never
// mutated. Round trips are lossy by construction in both directions.
type PersonConverter struct {
	logger *slog.Logger
}

// NewPersonConverter creates a person converter
func NewPersonConverter(logger *slog.Logger) *PersonConverter {
	return &PersonConverter{logger: logger}
}

type personConversion func(*PersonConverter, string, models.JSONMap) (models.JSONMap, error)

var personConversions = map[conversionPair]personConversion{
	{models.SchemaV2, models.SchemaV3}: (*PersonConverter).convertV2V3,
	{models.SchemaV3, models.SchemaV2}: (*PersonConverter).convertV3V2,
}

// Convert converts a document between schema versions. Identity conversions
// return the document unchanged.
func (c *PersonConverter) Convert(id string, doc models.JSONMap, from, to models.SchemaVersion) (models.JSONMap, error) {
	if from == to {
		return doc, nil
	}
	convert, ok := personConversions[conversionPair{From: from, To: to}]
	if !ok {
		return nil, unsupported(from, to)
	}
	return convert(c, id, doc)
}

// v2 keys that are consumed, dropped deliberately, or carried through.
// Anything outside this set is dropped with a diagnostic.
var knownV2Keys = map[string]bool{
	"description": true, "favColor": true, "fav_item": true, "gravatar": true,
	"minecraft": true, "minecraft_previous": true, "minecraftUUID": true,
	"name": true, "options": true, "slack": true, "twitter": true,
	"website": true, "wiki": true, "status": true, "invitedBy": true,
	"join_date": true,
	// dropped: no v3 equivalent
	"reddit": true, "irc": true, "id": true, "nicks": true,
	orderKey: true,
}

var verbatimV2Keys = []string{"description", "favColor", "gravatar", "name", "options", "slack", "website"}

func (c *PersonConverter) convertV2V3(id string, oldp models.JSONMap) (models.JSONMap, error) {
	newp := models.JSONMap{}

	for _, key := range verbatimV2Keys {
		if v, ok := oldp[key]; ok {
			newp[key] = v
		}
	}

	if v, ok := oldp["fav_item"]; ok {
		// the favourite item now lives on a base
		newp["base"] = []interface{}{map[string]interface{}{"tunnelItem": v}}
	}

	minecraft := map[string]interface{}{}
	if current, ok := oldp["minecraft"]; ok {
		nicks := []interface{}{}
		if previous, ok := oldp["minecraft_previous"].([]interface{}); ok {
			nicks = append(nicks, previous...)
		}
		nicks = append(nicks, current)
		minecraft["nicks"] = nicks
	}
	if v, ok := oldp["minecraftUUID"]; ok {
		minecraft["uuid"] = v
	}
	if len(minecraft) > 0 {
		newp["minecraft"] = minecraft
	}

	if v, ok := oldp["twitter"]; ok {
		newp["twitter"] = map[string]interface{}{"username": v}
	}
	if v, ok := oldp["wiki"].(string); ok {
		newp["wiki"] = "User:" + v
	}
	if v, ok := oldp[orderKey]; ok {
		newp[orderKey] = v
	}

	if err := models.SetStatusHistory(newp, c.reconstructHistory(id, oldp)); err != nil {
		return nil, fmt.Errorf("convert %q v2 to v3: %w", id, err)
	}

	for key := range oldp {
		if !knownV2Keys[key] {
			c.logger.Warn("dropping unknown v2 key", "id", id, "key", key)
		}
	}

	return newp, nil
}

// reconstructHistory rebuilds a status-history log from v2's single status
// field. v2 could record at most one transition, so a "former" current
// status implies a prior admission; a synthetic "later" event represents it.
func (c *PersonConverter) reconstructHistory(id string, oldp models.JSONMap) []models.StatusEvent {
	raw := "later" // absent status defaults to later
	if v, ok := oldp["status"].(string); ok {
		raw = v
	}

	current := models.StatusEvent{}
	switch raw {
	case "founding":
		current.Status = models.StatusFounding
	case "invited":
		current.Status = models.StatusInvited
	case "later", "postfreeze":
		current.Status = models.StatusLater
	case "former":
		current.Status = models.StatusFormer
	case "vetoed":
		current.Status = models.StatusFormer
		current.Reason = models.ReasonVetoed
	default:
		c.logger.Warn("unknown v2 status value, defaulting to later", "id", id, "status", raw)
		current.Status = models.StatusLater
	}

	if by, ok := oldp["invitedBy"].(string); ok {
		current.By = by
	}
	if raw, ok := oldp["join_date"].(string); ok {
		if date, err := time.Parse(time.RFC3339, raw); err == nil {
			utc := date.UTC()
			current.Date = &utc
		} else {
			c.logger.Warn("unparseable v2 join_date", "id", id, "join_date", raw)
		}
	}

	history := make([]models.StatusEvent, 0, 2)
	if current.Status == models.StatusFormer {
		history = append(history, models.StatusEvent{Status: models.StatusLater, By: current.By})
	}
	return append(history, current)
}

// v3 keys that are consumed or dropped deliberately
var knownV3Keys = map[string]bool{
	"description": true, "favColor": true, "gravatar": true, "name": true,
	"options": true, "base": true, "minecraft": true, "alt": true,
	"twitter": true, "website": true, "wiki": true, "statusHistory": true,
	// dropped: no v2 equivalent
	"slack": true, "mojira": true, "openID": true, orderKey: true,
}

var verbatimV3Keys = []string{"description", "favColor", "gravatar", "name", "options", "website"}

func (c *PersonConverter) convertV3V2(id string, v3 models.JSONMap) (models.JSONMap, error) {
	v2 := models.JSONMap{}

	for _, key := range verbatimV3Keys {
		if v, ok := v3[key]; ok {
			v2[key] = v
		}
	}

	if bases, ok := v3["base"].([]interface{}); ok {
		// no way to tell which base is the main one; the first with an item wins
		for _, b := range bases {
			base, ok := b.(map[string]interface{})
			if !ok {
				continue
			}
			if item, ok := base["tunnelItem"]; ok {
				v2["fav_item"] = item
				break
			}
		}
	}

	previous := []interface{}{}
	if alts, ok := v3["alt"].([]interface{}); ok {
		previous = append(previous, alts...)
	}
	if minecraft, ok := v3["minecraft"].(map[string]interface{}); ok {
		if uuid, ok := minecraft["uuid"]; ok {
			v2["minecraftUUID"] = uuid
		}
		if nicks, ok := minecraft["nicks"].([]interface{}); ok && len(nicks) > 0 {
			// last nick is the current name, earlier ones are superseded
			v2["minecraft"] = nicks[len(nicks)-1]
			previous = append(previous, nicks[:len(nicks)-1]...)
		}
	}
	if len(previous) > 0 {
		v2["minecraft_previous"] = previous
	}

	if twitter, ok := v3["twitter"].(map[string]interface{}); ok {
		if username, ok := twitter["username"]; ok {
			v2["twitter"] = username
		}
	}
	if wiki, ok := v3["wiki"].(string); ok {
		v2["wiki"] = strings.TrimPrefix(wiki, "User:")
	}

	if err := c.reduceHistory(id, v3, v2); err != nil {
		return nil, fmt.Errorf("convert %q v3 to v2: %w", id, err)
	}

	for key := range v3 {
		if !knownV3Keys[key] {
			c.logger.Warn("dropping unknown v3 key", "id", id, "key", key)
		}
	}

	return v2, nil
}

// reduceHistory collapses a status-history log into v2's single status plus
// join metadata. Only the last event decides the status; join_date and
// invitedBy come from the first dated event, which may be a different one.
func (c *PersonConverter) reduceHistory(id string, v3, v2 models.JSONMap) error {
	history, err := models.StatusHistoryOf(v3)
	if err != nil {
		return err
	}

	if len(history) > 0 {
		last := history[len(history)-1]
		switch last.Status {
		case models.StatusFounding, models.StatusInvited:
			v2["status"] = string(last.Status)
		case models.StatusLater:
			if last.Date != nil && last.Date.After(postfreezeCutoff) {
				v2["status"] = "postfreeze"
			} else {
				v2["status"] = "later"
			}
		case models.StatusFormer:
			if last.Reason == models.ReasonVetoed {
				v2["status"] = "vetoed"
			} else {
				v2["status"] = "former"
			}
		case models.StatusDisabled, models.StatusGuest:
			// v2 cannot express these; the collapse loses information
			v2["status"] = "former"
		default:
			c.logger.Warn("unknown status in history", "id", id, "status", last.Status)
		}
	}

	var sortDate *time.Time
	for _, event := range history {
		if event.Date != nil {
			v2["join_date"] = event.Date.UTC().Format(time.RFC3339)
			if event.By != "" {
				v2["invitedBy"] = event.By
			}
			sortDate = event.Date
			break
		}
	}
	if sortDate == nil {
		c.logger.Warn("no dated status event, sorting by current time", "id", id)
		now := time.Now().UTC()
		sortDate = &now
	}
	v2[SortDateKey] = sortDate.UTC()
	return nil
}
