// Package docpath addresses values inside a record's decoded document tree
// with a dot-delimited path. Each segment is either a mapping key or a
// sequence index; the walk is explicit over the three node kinds a decoded
// JSON document can contain (mapping, sequence, scalar).
package docpath

import (
	"fmt"
	"strconv"
	"strings"

	"roster/internal/domain"
)

// Segment is one step of a path. Raw is the literal segment text; Index is
// its numeric value when the segment can address a sequence position.
type Segment struct {
	Raw     string
	Index   int
	IsIndex bool
}

// Path is a parsed dot-delimited address into a document
type Path []Segment

// Parse splits a dotted path into segments. All-digit segments double as
// sequence indexes; which meaning applies is decided by the node they meet.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidArgument)
	}
	parts := strings.Split(raw, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty path segment in %q", domain.ErrInvalidArgument, raw)
		}
		seg := Segment{Raw: part}
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			seg.Index = n
			seg.IsIndex = true
		}
		path = append(path, seg)
	}
	return path, nil
}

// String reassembles the dotted form
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.Raw
	}
	return strings.Join(parts, ".")
}

// Get walks the document and returns the value at the path.
// Returns ErrNotFound if any segment is absent.
func Get(doc map[string]interface{}, path Path) (interface{}, error) {
	var node interface{} = doc
	for _, seg := range path {
		next, ok := step(node, seg)
		if !ok {
			return nil, fmt.Errorf("%w: path %q", domain.ErrNotFound, path)
		}
		node = next
	}
	return node, nil
}

// step resolves one segment against a node, reporting absence
func step(node interface{}, seg Segment) (interface{}, bool) {
	switch n := node.(type) {
	case map[string]interface{}:
		v, ok := n[seg.Raw]
		return v, ok
	case []interface{}:
		if !seg.IsIndex || seg.Index >= len(n) {
			return nil, false
		}
		return n[seg.Index], true
	default:
		return nil, false
	}
}

// Set writes value at the path, creating intermediate mappings or sequences
// as needed. A sequence position past the current end extends the sequence
// with nulls; an existing position is overwritten. Attempting to descend
// through a scalar fails with ErrInvalidArgument.
func Set(doc map[string]interface{}, path Path, value interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", domain.ErrInvalidArgument)
	}
	_, err := setNode(doc, path, value)
	return err
}

// setNode descends into node and returns the (possibly replaced) node.
// Sequences are replaced on extension, so the parent link is rewritten on
// the way back up.
func setNode(node interface{}, path Path, value interface{}) (interface{}, error) {
	seg := path[0]
	last := len(path) == 1

	switch n := node.(type) {
	case map[string]interface{}:
		if last {
			n[seg.Raw] = value
			return n, nil
		}
		child, ok := n[seg.Raw]
		if !ok || child == nil {
			child = emptyNodeFor(path[1])
		}
		updated, err := setNode(child, path[1:], value)
		if err != nil {
			return nil, err
		}
		n[seg.Raw] = updated
		return n, nil

	case []interface{}:
		if !seg.IsIndex {
			return nil, fmt.Errorf("%w: segment %q addresses a sequence", domain.ErrInvalidArgument, seg.Raw)
		}
		for len(n) <= seg.Index {
			n = append(n, nil)
		}
		if last {
			n[seg.Index] = value
			return n, nil
		}
		child := n[seg.Index]
		if child == nil {
			child = emptyNodeFor(path[1])
		}
		updated, err := setNode(child, path[1:], value)
		if err != nil {
			return nil, err
		}
		n[seg.Index] = updated
		return n, nil

	default:
		return nil, fmt.Errorf("%w: segment %q addresses a scalar", domain.ErrInvalidArgument, seg.Raw)
	}
}

// emptyNodeFor picks the container kind the next segment needs
func emptyNodeFor(next Segment) interface{} {
	if next.IsIndex {
		return []interface{}{}
	}
	return map[string]interface{}{}
}

// Delete removes the value at the path. Deletion is best effort: a missing
// segment anywhere along the way is a no-op, never an error.
func Delete(doc map[string]interface{}, path Path) {
	if len(path) == 0 {
		return
	}
	var node interface{} = doc
	for _, seg := range path[:len(path)-1] {
		next, ok := step(node, seg)
		if !ok {
			return
		}
		node = next
	}

	seg := path[len(path)-1]
	switch n := node.(type) {
	case map[string]interface{}:
		delete(n, seg.Raw)
	case []interface{}:
		if seg.IsIndex && seg.Index < len(n) {
			// positional delete keeps later elements addressable at the
			// same indexes; the slot is nulled rather than shifted
			n[seg.Index] = nil
		}
	}
}
