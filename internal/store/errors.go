package store

import "errors"

// ErrAlertNotFound is returned by Dismiss/DismissCritical when no active
// alert matches the given id (spec.md §4.11, §4.14).
var ErrAlertNotFound = errors.New("store: alert not found")

// ErrDatabase wraps a repository failure encountered while checking the
// dismissal log (spec.md §4.14 infrastructure failures); a failed dismissal
// write is wrapped as ErrSerialization instead.
var ErrDatabase = errors.New("store: database error")

// ErrLockFailed indicates the store's readers-writer lock could not be
// acquired (spec.md §5 "guarded by a readers-writer lock"). Go's sync.RWMutex
// cannot itself fail to lock, so this is reserved for a future host-imposed
// timeout wrapper; nothing in this package returns it today.
var ErrLockFailed = errors.New("store: lock acquisition failed")

// ErrSerialization wraps a failure to marshal/persist a dismissal record
// (spec.md §4.14).
var ErrSerialization = errors.New("store: dismissal serialization failed")
