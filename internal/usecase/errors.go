package usecase

// ErrInvalidField rejects one submitted field. The string is the field
// label the storefront shows next to the form ("Invalid phone" etc.);
// the first violated check wins and no later checks run.
type ErrInvalidField string

func (e ErrInvalidField) Error() string { return "Invalid " + string(e) }

// ErrRateLimited tells the client to back off and retry, as opposed to
// fixing its input.
type ErrRateLimited struct{}

func (ErrRateLimited) Error() string { return "Too many requests. Please try again later." }

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrForbidden string

func (e ErrForbidden) Error() string { return string(e) }

type ErrBadRequest string

func (e ErrBadRequest) Error() string { return string(e) }
