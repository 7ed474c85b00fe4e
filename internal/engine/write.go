package engine

// Write is one intended field-level change. Engines compute write-sets
// from a snapshot and never touch storage themselves; the repository
// applies them afterwards. A write carrying a full field set acts as an
// insert for an id the store has not seen.
type Write struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}
