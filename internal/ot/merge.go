package ot

// Merge combines two same-origin edits, a (earlier in the outbound queue)
// and b (its immediate successor), into a in place. It reports whether the
// merge succeeded; on failure neither edit is touched.
//
// Merge is used only on the client's own outbound queue, never across the
// client/server boundary — collide is the primitive for that boundary.
func Merge(a, b *Edit) bool {
	switch {
	case a.Position+len(a.Insert) == b.Position:
		mergeAppend(a, b)
		return true
	case b.Position == a.Position:
		mergeCoincident(a, b)
		return true
	case a.Position < b.Position && b.Position < a.Position+len(a.Insert):
		mergeInterior(a, b)
		return true
	default:
		return false
	}
}

// mergeAppend handles b landing exactly where a's insert ends.
func mergeAppend(a, b *Edit) {
	a.Insert += b.Insert
	a.NumDelete += b.NumDelete
}

// mergeCoincident handles b starting at the same position as a. b's
// deletion first consumes a's insert; any excess deletes original content
// behind a.
func mergeCoincident(a, b *Edit) {
	r := max(0, b.NumDelete-len(a.Insert))

	a.NumDelete += r
	a.Insert = b.Insert + sliceFrom(a.Insert, b.NumDelete)
}

// mergeInterior handles b landing strictly inside a's inserted text.
func mergeInterior(a, b *Edit) {
	o := b.Position - a.Position
	r := max(0, b.NumDelete-(len(a.Insert)-o))

	a.NumDelete += r
	a.Insert = a.Insert[:o] + b.Insert + sliceFrom(a.Insert[o:], b.NumDelete)
}

// sliceFrom returns s with the first n bytes dropped, clamped to len(s).
func sliceFrom(s string, n int) string {
	if n >= len(s) {
		return ""
	}

	return s[n:]
}
