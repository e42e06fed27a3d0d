// Package localdoc holds the client's own copy of the document text. It
// has no opinion about versions, conflicts, or the network: it only
// knows how to splice an ot.Edit into a rune buffer. Everything about
// when an edit is safe to apply lives upstream, in the ot.Model.
package localdoc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/driftdoc/client/internal/ot"
)

// ErrInvalidPosition is returned when an edit targets a position outside
// the current document bounds.
var ErrInvalidPosition = errors.New("invalid position")

// Document is the text the user is actually looking at. Safe for
// concurrent use.
type Document struct {
	mu      sync.RWMutex
	content []rune
}

// New creates a Document seeded with the given initial content, typically
// a snapshot loaded from cache or received from the server on join.
func New(initial string) *Document {
	return &Document{
		content: []rune(initial),
	}
}

// Apply splices e into the document: NumDelete runes starting at
// Position are removed, then Insert is written in their place.
func (d *Document) Apply(e ot.Edit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e.Position < 0 || e.Position > len(d.content) {
		return ErrInvalidPosition
	}

	end := e.Position + e.NumDelete
	if end > len(d.content) {
		return ErrInvalidPosition
	}

	chars := []rune(e.Insert)

	newContent := make([]rune, 0, len(d.content)-e.NumDelete+len(chars))
	newContent = append(newContent, d.content[:e.Position]...)
	newContent = append(newContent, chars...)
	newContent = append(newContent, d.content[end:]...)
	d.content = newContent

	return nil
}

// ApplyAll splices a batch of edits in order, stopping at the first
// failure. The Model only ever hands this a batch it has already
// resolved against the document's actual history, so a failure here
// means the two have drifted out of sync.
func (d *Document) ApplyAll(edits []ot.Edit) error {
	for i, e := range edits {
		if err := d.Apply(e); err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
	}

	return nil
}

// Content returns the current document content as a string.
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return string(d.content)
}

// Len returns the number of runes in the document.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.content)
}
