package store

import "errors"

var (
	// ErrUnknownIdentity indicates a merge referenced a record that does not
	// exist in the store. Stages never invent identities; only the scan stage
	// introduces them.
	ErrUnknownIdentity = errors.New("unknown record identity")

	// ErrDuplicateIdentity indicates two records share the same local_path.
	ErrDuplicateIdentity = errors.New("duplicate record identity")
)
