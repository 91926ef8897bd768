package errors

import "errors"

// Sentinel errors returned by the storage layer and the services built on
// top of it. Handlers translate these into OAuth2Error responses.
var (
	ErrClientNotFound     = errors.New("client not found")
	ErrDuplicateClient    = errors.New("client identifier already exists")
	ErrCodeNotFound       = errors.New("authorization code not found")
	ErrDuplicateCode      = errors.New("authorization code already exists")
	ErrTokenNotFound      = errors.New("token not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthenticationRequired signals that an authorize request reached the
	// grant engine without a bound identity and must be suspended by the
	// login-resumption bridge.
	ErrAuthenticationRequired = errors.New("interactive authentication required")
)

// Is and As re-export their stdlib counterparts so callers of this package
// do not need to import both error packages.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
