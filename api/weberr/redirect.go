package weberr

import (
	"errors"
	"fmt"
	"net/http"
)

// RedirectError is a control-flow signal, not a failure: the errors
// middleware answers it with a redirect and never converts it into a result.
type RedirectError struct {
	URL    string
	Status int
}

func (r *RedirectError) Error() string {
	return fmt.Sprintf("redirect %d to %s", r.Status, r.URL)
}

func Redirect(url string) error {
	return &RedirectError{URL: url, Status: http.StatusSeeOther}
}

func AsRedirect(err error) (*RedirectError, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func IsRedirect(err error) bool {
	_, ok := AsRedirect(err)
	return ok
}
