// Package schema converts person documents and roster envelopes between the
// two supported shapes: the flat v2 format (single status field, ordered
// sequence envelope) and the v3 format (status-history log, id-keyed
// mapping envelope).
package schema

import (
	"fmt"

	"roster/internal/domain"
	"roster/internal/domain/models"
)

// conversionPair keys the conversion tables. Only {2,3} and {3,2} have
// entries; everything else is unsupported by construction.
type conversionPair struct {
	From, To models.SchemaVersion
}

func unsupported(from, to models.SchemaVersion) error {
	return fmt.Errorf("%w: %s to %s", domain.ErrUnsupportedConversion, from, to)
}
