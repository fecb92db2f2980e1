// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates and checks the identifiers used as primary keys.

New IDs are UUIDv7, so orders and ledger entries created later sort later,
and inserts land at the right edge of their B-tree indexes.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 in canonical form. It panics only if the
// system entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsValid reports whether s is a UUID in canonical 36-character form.
// IDs that fail this check can never match a row, and would make PostgreSQL
// reject the query rather than return no rows.
func IsValid(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
