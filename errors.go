package judy

import "errors"

// Sentinel errors returned by the engine. Callers compare with errors.Is.
var (
	// ErrOutOfMemory is returned when an arena allocation fails. The
	// trie is left in a structurally consistent state.
	ErrOutOfMemory = errors.New("judy: out of memory")
	// ErrReadOnly is returned by mutating calls on a cloned handle.
	ErrReadOnly = errors.New("judy: handle is read-only (cloned)")
	// ErrEmbeddedZero is returned when a byte-string-mode key contains
	// a zero byte, which is reserved as the implicit terminator.
	ErrEmbeddedZero = errors.New("judy: key contains an embedded zero byte")
	// ErrKeyTooLong is returned when a key exceeds the handle's
	// configured maximum length, and in fixed-integer mode for any key
	// that is not exactly depth digits long (shorter keys included).
	ErrKeyTooLong = errors.New("judy: key exceeds maximum length")
	// ErrClosed is returned by any call made on a handle after Close.
	ErrClosed = errors.New("judy: handle is closed")
)
