// Package sink writes a finalized table.Table out to a concrete output
// format: open the destination, write everything, close.
package sink

import "nctrace/internal/table"

// Sink persists a Table to its destination in one shot.
type Sink interface {
	Write(t *table.Table) error
}
