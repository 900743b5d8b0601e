package repository

import (
	"errors"
)

// Constraint violations surface as these sentinels (wrapped with the
// constraint name) so services can tell a conflict from a storage failure
// with errors.Is.
var (
	ErrConflict   = errors.New("unique constraint violation")
	ErrForeignKey = errors.New("referenced row does not exist")
)
