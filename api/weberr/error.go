package weberr

import (
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
)

// RequestError marks err as the caller's business. Its message is never shown;
// the attached web.Result is.
type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (r *RequestError) Unwrap() error { return r.Err }

// Fail wraps err so it renders as an unsuccessful result with message.
func Fail(err error, message string, status int, opts ...Opt) error {
	opts = append(opts, WithResponse(
		web.Result{Success: false, Message: message},
		status,
	))

	return Wrap(&RequestError{Err: err}, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return Fail(err, "The resource could not be found", http.StatusNotFound, opts...)
}

func NotAuthorized(err error, opts ...Opt) error {
	return Fail(err, "Not authorized to access resource", http.StatusUnauthorized, opts...)
}

func BadRequest(err error, opts ...Opt) error {
	return Fail(err, "Bad request", http.StatusBadRequest, opts...)
}

func InternalError(err error, opts ...Opt) error {
	return Fail(err, "The server encountered a problem and could not process your request", http.StatusInternalServerError, opts...)
}
