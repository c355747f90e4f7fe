package store

import (
	"encoding/json"
	"fmt"
)

// Encode serializes the aggregate in its persisted JSON layout.
func Encode(db *Database) ([]byte, error) {
	b, err := json.Marshal(db)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return b, nil
}

// Decode parses a persisted aggregate. Empty input yields an empty aggregate.
func Decode(b []byte) (*Database, error) {
	db := &Database{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, db); err != nil {
			return nil, fmt.Errorf("store: decode: %w", err)
		}
	}
	db.normalize()
	return db, nil
}
