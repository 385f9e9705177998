package model

import "time"

// Cursor is the singleton ingestion progress marker persisted in the
// INDEXER space. It is opaque to comparisons except by (BlockNumber,
// ordinal implied by the opaque string itself) — BlockNumber alone is
// sufficient for the monotonicity check the writer enforces.
type Cursor struct {
	CursorOpaque   string
	BlockNumber    uint64
	BlockTimestamp time.Time
	VersionIndex   uint16
}

// Advances reports whether candidate is a legitimate successor to c: its
// block number must be strictly greater, enforcing block-number
// monotonicity at the writer.
func (c Cursor) Advances(candidate Cursor) bool {
	return candidate.BlockNumber > c.BlockNumber
}
