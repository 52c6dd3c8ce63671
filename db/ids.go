// Package db is the incremental def database (§4.5): interned file and
// item identities behind a small set of memoized queries, with explicit
// dependency tracking in place of a borrowed memoization library (§9).
package db

import (
	"fmt"

	"github.com/kungfusheep/phenix/schema"
)

// FileID is a stable identifier for one interned source path. Two calls to
// Database.InternFile with the same path return the same FileID.
type FileID int

// ItemID is a stable identifier for one interned (file, item) pair. It
// survives recompilation so long as the item's lowered data is unchanged,
// since interning compares by value, not by position.
type ItemID int

// itemLoc is the interning payload for an ItemID: the owning file plus the
// lowered item data itself, mirroring original_source's ItemLoc<ItemData>.
type itemLoc struct {
	file FileID
	item schema.ItemData
}

// key returns a string uniquely identifying this (file, item) pair by
// value. schema.ItemData embeds slices and so isn't a valid Go map key on
// its own; formatting it deterministically gives the same by-value
// interning semantics original_source gets for free from derived Hash/Eq
// on its ItemLoc<ItemData>.
func (l itemLoc) key() string {
	return fmt.Sprintf("%d|%#v", l.file, l.item)
}
