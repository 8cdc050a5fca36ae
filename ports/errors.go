package ports

import "errors"

// ErrNotFound is returned (possibly wrapped) by stores when a record does not
// exist.
var ErrNotFound = errors.New("not found")
