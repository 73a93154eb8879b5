package usecase

import "errors"

// ErrSnapshotNotFound is returned by a SnapshotRepository when the user has no rows.
var ErrSnapshotNotFound = errors.New("snapshot not found")
