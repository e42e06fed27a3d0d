package ot

// Collide transforms a pair of concurrent edits, remote and local, so each
// can be applied in its own history without disturbing the other. Both
// arguments are mutated in place; neither edit's intent is discarded.
//
// Collide is never applied between two client edits — that's what Merge
// is for — and never mutates more than the two edits handed to it.
func Collide(remote, local *Edit) {
	earlier, later := remote, local
	if local.Position < remote.Position {
		earlier, later = local, remote
	}

	switch {
	case earlier.NumDelete == 0:
		// Pure insert earlier: later simply shifts past it.
		later.Position += len(earlier.Insert)
	case earlier.Position+earlier.NumDelete <= later.Position:
		// Disjoint: later shifts by earlier's net length change.
		later.Position += len(earlier.Insert) - earlier.NumDelete
	default:
		collideOverlap(earlier, later)
	}
}

// collideOverlap handles the case where earlier's deletion region reaches
// into later's position.
func collideOverlap(earlier, later *Edit) {
	gap := later.Position - earlier.Position
	excess := max(0, earlier.NumDelete-gap)

	if excess > later.NumDelete {
		// later's deletion fits entirely inside earlier's: earlier
		// absorbs later's insert by extending its own deletion and
		// insert, crediting later's already-satisfied delete intent.
		earlier.NumDelete += len(later.Insert) - later.NumDelete
		earlier.Insert += later.Insert
	} else {
		earlier.NumDelete = gap
	}

	later.NumDelete = max(0, later.NumDelete-excess)
	later.Position = earlier.Position + len(earlier.Insert)
}
