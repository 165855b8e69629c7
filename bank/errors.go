package bank

import "fmt"

// Decode failures carry the container entry index (-1 for the offset table)
// and the byte offset nearest the fault so a malformed blob can be examined
// in a hex editor. Each failure kind is a distinct type; callers that want
// to isolate a bad entry and continue with its siblings can treat any of
// them as fatal for that entry only.

// TruncatedError reports a read that needs more bytes than remain.
type TruncatedError struct {
	Entry  int
	Offset int64
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("bank: entry %d: truncated input at offset %d: need %d bytes, have %d", e.Entry, e.Offset, e.Need, e.Have)
}

// RangeError reports a computed slice extending beyond its enclosing
// region. What names the slice being computed.
type RangeError struct {
	Entry  int
	Offset int64
	What   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bank: entry %d: %s out of range at offset %d", e.Entry, e.What, e.Offset)
}

// PaletteError reports a decoded color index with no palette entry.
type PaletteError struct {
	Entry   int
	Offset  int64
	Sprite  int
	Index   int
	Palette int
	Size    int
}

func (e *PaletteError) Error() string {
	return fmt.Sprintf("bank: entry %d: sprite %d: color index %d out of range for palette %d of %d colors (offset %d)", e.Entry, e.Sprite, e.Index, e.Palette, e.Size, e.Offset)
}

// LayoutError reports a geometric mismatch: a sprite count that does not
// fill the subimage grid, or a composition destination that does not match
// its source.
type LayoutError struct {
	Entry  int
	Offset int64
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("bank: entry %d: layout mismatch at offset %d: %s", e.Entry, e.Offset, e.Reason)
}
