package product

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey is the normalized form of a name used for uniqueness: trimmed and
// Unicode case folded, so "STRASSE" and "straße" share a key. A Caser keeps
// state, so each call builds its own.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Conflicts reports uniqueness collisions between d and a snapshot of the
// catalog, ignoring the record with excludeID. The answer is advisory: the
// snapshot may be stale, so repositories repeat the check when writing.
func Conflicts(snapshot []*Product, d Draft, excludeID string) *Rejection {
	key := NameKey(d.Name)
	var nameTaken, skuTaken bool
	for _, p := range snapshot {
		if p.ID == excludeID {
			continue
		}
		if NameKey(p.Name) == key {
			nameTaken = true
		}
		if d.SKU != nil && p.SKU != nil && *p.SKU == *d.SKU {
			skuTaken = true
		}
	}
	return DuplicateRejection(nameTaken, skuTaken)
}
