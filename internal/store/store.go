// internal/store/store.go
package store

import (
	"errors"

	"github.com/treemark/anchor/pkg/core"
)

// ErrSessionNotFound is returned by GetByOriginID when no session has ever
// been created for the marker.
var ErrSessionNotFound = errors.New("no session for origin")

// ErrDuplicateOrigin is returned by Create when a session already exists for
// the marker. Create never replaces: replacing would orphan the existing
// point chain.
var ErrDuplicateOrigin = errors.New("session already exists for origin")

// ErrUnknownOrigin is returned by AppendPoint when no session exists for the
// marker.
var ErrUnknownOrigin = errors.New("unknown origin")

// Store is the interface all session persistence implementations must satisfy.
// Sessions are keyed by the origin marker id; points are kept in insertion
// order. Any failure that is not one of the sentinel errors above is a
// persistence failure and means the operation did not commit.
type Store interface {
	// Lifecycle
	Close() error

	// Session management
	GetByOriginID(originID string) (*core.Session, error)
	Create(session *core.Session) error
	DeleteSession(originID string) error

	// Point recording. The point insert and the session's updated_at
	// refresh are one atomic unit: both apply or neither does.
	AppendPoint(originID string, point core.PlantedPoint) error

	// Diagnostics
	CountSessions() (int64, error)
	CountPoints() (int64, error)
}
