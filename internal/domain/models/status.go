package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is a member's standing on the roster. The last entry of a record's
// statusHistory is the authoritative current status.
type Status string

const (
	StatusFounding Status = "founding"
	StatusInvited  Status = "invited"
	StatusGuest    Status = "guest"
	StatusLater    Status = "later"
	StatusDisabled Status = "disabled"
	StatusFormer   Status = "former"
)

// Statuses lists every valid status value.
func Statuses() []Status {
	return []Status{StatusFounding, StatusInvited, StatusGuest, StatusLater, StatusDisabled, StatusFormer}
}

// Valid reports whether s is a known status value
func (s Status) Valid() bool {
	switch s {
	case StatusFounding, StatusInvited, StatusGuest, StatusLater, StatusDisabled, StatusFormer:
		return true
	}
	return false
}

// RequiresReason reports whether a transition to s must carry a reason
func (s Status) RequiresReason() bool {
	return s == StatusFormer || s == StatusDisabled
}

// StatusReason explains a transition to former or disabled
type StatusReason string

const (
	ReasonCoC        StatusReason = "coc"
	ReasonGuest      StatusReason = "guest"
	ReasonInactivity StatusReason = "inactivity"
	ReasonRequest    StatusReason = "request"
	ReasonVetoed     StatusReason = "vetoed"
)

// Valid reports whether r is a known reason value
func (r StatusReason) Valid() bool {
	switch r {
	case ReasonCoC, ReasonGuest, ReasonInactivity, ReasonRequest, ReasonVetoed:
		return true
	}
	return false
}

// StatusEvent is one entry in a record's statusHistory: a dated status
// transition with the actor who made it and an optional reason.
type StatusEvent struct {
	Status Status       `json:"status"`
	Date   *time.Time   `json:"date,omitempty"`
	By     string       `json:"by,omitempty"`
	Reason StatusReason `json:"reason,omitempty"`
}

const statusHistoryKey = "statusHistory"

// StatusHistoryOf decodes the statusHistory entries of a v3 document.
// A missing key yields an empty history.
func StatusHistoryOf(doc JSONMap) ([]StatusEvent, error) {
	raw, ok := doc[statusHistoryKey]
	if !ok || raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	var events []StatusEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	return events, nil
}

// SetStatusHistory writes the history back into the document tree in its
// generic decoded form, so path addressing keeps working on it.
func SetStatusHistory(doc JSONMap, events []StatusEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}
	var generic []interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}
	if generic == nil {
		generic = []interface{}{}
	}
	doc[statusHistoryKey] = generic
	return nil
}
