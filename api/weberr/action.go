package weberr

import (
	"net/http"
)

// Validation is the result of malformed input. The validator's message is
// shown to the caller.
func Validation(err error, opts ...Opt) error {
	return Fail(err, err.Error(), http.StatusBadRequest, opts...)
}

// Missing is the result of a referenced record that does not exist.
func Missing(err error, message string, opts ...Opt) error {
	return Fail(err, message, http.StatusNotFound, opts...)
}

// Action converts any error escaping a user-facing mutation into a failed
// result. Redirects and errors that already carry a response pass through.
func Action(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsRedirect(err) {
		return err
	}
	if _, _, ok := Response(err); ok {
		return err
	}
	return Fail(err, message, http.StatusInternalServerError)
}
