package capability

import (
	"errors"
	"sync"

	"github.com/driftdoc/client/internal/ot"
)

// ErrReadOnly is returned when a local edit is attempted without
// sufficient role.
var ErrReadOnly = errors.New("document is read-only for this role")

// EditSubmitter is the subset of Session that Guard gates. Session satisfies
// this directly; tests can supply a narrower fake.
type EditSubmitter interface {
	SubmitLocalEdit(edit ot.Edit) error
}

// Guard wraps a Session so SubmitLocalEdit never reaches the ot.Model
// unless the current role allows writing. The role itself is set by
// whatever the server last told the client it is, typically alongside
// the initial document snapshot.
type Guard struct {
	editor EditSubmitter

	mu   sync.RWMutex
	role Role
}

// NewGuard wraps editor, starting with the given role.
func NewGuard(editor EditSubmitter, role Role) *Guard {
	return &Guard{editor: editor, role: role}
}

// SetRole updates the role the server has granted this client.
func (g *Guard) SetRole(role Role) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.role = role
}

// Role returns the currently granted role.
func (g *Guard) Role() Role {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.role
}

// SubmitLocalEdit forwards edit to the wrapped editor if the current
// role allows writing, or returns ErrReadOnly without touching it.
func (g *Guard) SubmitLocalEdit(edit ot.Edit) error {
	if !g.Role().CanWrite() {
		return ErrReadOnly
	}

	return g.editor.SubmitLocalEdit(edit)
}
