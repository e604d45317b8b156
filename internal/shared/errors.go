package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrMissingCredential occurs when a request carries no bearer token.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential occurs when the identity provider rejects a token.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrProfileInit occurs when no profile can be provisioned for a verified identity.
	ErrProfileInit = errors.New("profile initialisation failed")
	// ErrPermissionDenied indicates the actor may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrOwnAccount occurs when an administrator targets their own account.
	ErrOwnAccount = errors.New("cannot manage own account through the administrative path")
	// ErrInvalidRole occurs when a role change names an unknown tier.
	ErrInvalidRole = errors.New("invalid role")
)

// UserSafeMessage maps internal errors to messages suitable for end users.
// Anything unrecognised collapses to a generic failure so internals never leak.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested resource was not found."
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrInvalidCredential):
		return "Authentication required."
	case errors.Is(err, ErrPermissionDenied):
		return "You do not have permission to perform this action."
	case errors.Is(err, ErrOwnAccount):
		return "You cannot perform this action on your own account."
	case errors.Is(err, ErrInvalidRole):
		return "The requested role does not exist."
	default:
		return "Something went wrong. Please try again."
	}
}
