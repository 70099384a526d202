// Package storage defines the persistence contract shared by the roll-log
// backends: a namespaced key holding one serialized document.
package storage

import "errors"

// ErrKeyNotFound is returned by a backend's Load when nothing has been
// saved under the requested key.
var ErrKeyNotFound = errors.New("key not found")
