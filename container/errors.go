// Package container implements the nuts container: a versioned,
// password-wrapped header carrying a per-container master key/IV and
// backend settings, plus the per-block cipher pipeline layered over a
// backend.Backend.
package container

import "fmt"

// ErrInvalidHeader is returned when the header slot's magic doesn't
// match, or the decoded shape is otherwise not a valid nuts header.
var ErrInvalidHeader = fmt.Errorf("container: invalid header")

// ErrWrongPassword is returned when the secret decrypts but its
// double-magic check fails, indicating the wrong password was supplied.
var ErrWrongPassword = fmt.Errorf("container: wrong password")

// ErrInvalidSettings is returned when the backend rejects the settings
// blob recovered from the header.
var ErrInvalidSettings = fmt.Errorf("container: invalid backend settings")

// NoPasswordError is returned when a password is required (the kdf is
// PBKDF2) but no password callback was configured, or the callback
// itself failed.
type NoPasswordError struct {
	Err error
}

func (e *NoPasswordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("container: no password: %v", e.Err)
	}
	return "container: no password configured"
}
func (e *NoPasswordError) Unwrap() error { return e.Err }

// UnknownRevisionError is returned when the header names a revision this
// build doesn't understand.
type UnknownRevisionError struct {
	Revision uint32
}

func (e *UnknownRevisionError) Error() string {
	return fmt.Sprintf("container: unknown revision %d", e.Revision)
}

// ErrMigrationRequired is returned opening a revision-0 header without a
// migrator callback configured to recover the top id.
var ErrMigrationRequired = fmt.Errorf("container: migration required to open a revision-0 header")

// ErrServiceAlreadyAssigned is returned by CreateService when the
// container's header already carries a service id.
var ErrServiceAlreadyAssigned = fmt.Errorf("container: service already assigned")

// ErrServiceMismatch is returned by OpenService when the header's service
// id does not match what the caller expects.
var ErrServiceMismatch = fmt.Errorf("container: service id mismatch")
