package photo

import "errors"

var (
	// ErrPermissionDenied means the host refused access to the capture source.
	// The user can fix it, so callers surface it instead of aborting.
	ErrPermissionDenied = errors.New("photo: capture permission denied")
	// ErrNoImageSelected means the capture was cancelled. Callers treat it as a no-op.
	ErrNoImageSelected = errors.New("photo: no image selected")
	ErrEncodeFailed    = errors.New("photo: encode failed")
)
