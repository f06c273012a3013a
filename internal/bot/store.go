package bot

import "errors"

// ErrNotFound is returned by Store.FetchFile when the requested file entry
// does not exist.
var ErrNotFound = errors.New("file not found")

// Store provides the container tree for target data. Implementations must be
// safe for concurrent use: every mutating call is idempotent on conflict
// (create-if-absent, overwrite-on-collision) rather than locked externally.
// I/O failures never escape as panics; they surface as error values so a
// handler can always apologize and offer a retry.
type Store interface {
	// EnsureTarget creates the full category/subcategory container tree for
	// the target if absent. Returns true when the tree was newly created.
	// Creating an already-existing tree is a no-op, never an error.
	EnsureTarget(id string) (bool, error)

	// ListTargets enumerates existing target ids. A missing storage root is
	// self-healed (created) and yields an empty list, not an error.
	ListTargets() ([]string, error)

	// ListFiles returns the file entry names in one container, sorted.
	// A container that does not exist yields an empty list, not an error.
	ListFiles(target, category, subcategory string) ([]string, error)

	// StoreFile writes a file entry, creating intermediate containers as
	// needed. A name collision overwrites the existing entry.
	StoreFile(target, category, subcategory, name string, data []byte) error

	// FetchFile reads a file entry. Returns ErrNotFound if absent.
	FetchFile(target, category, subcategory, name string) ([]byte, error)

	// AppendActivity appends one line to the target's plain-text activity
	// mirror in the logs container.
	AppendActivity(target, line string) error

	// DeleteTarget removes the target's entire tree. Returns false, without
	// error, if the target never existed.
	DeleteTarget(id string) (bool, error)
}
