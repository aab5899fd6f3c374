package errs

import (
	"errors"

	pkgerr "github.com/pkg/errors"
)

var (
	ObjectNotFound   = errors.New("object not found")
	PermissionDenied = errors.New("permission denied")
	InvalidArgument  = errors.New("invalid argument")
	DuplicateTask    = errors.New("a task with this title and fee already exists")
	DuplicateApply   = errors.New("you have already applied for this task")
	InvalidToken     = errors.New("invalid token")
)

// IsObjectNotFound reports whether err unwraps to ObjectNotFound.
func IsObjectNotFound(err error) bool {
	return errors.Is(pkgerr.Cause(err), ObjectNotFound)
}
