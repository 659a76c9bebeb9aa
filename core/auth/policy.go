package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
)

// DefaultProtected are the path patterns that need a signed-in user:
// addresses, payment methods, order placement, the profile, per-user and
// per-order pages, and the admin area.
var DefaultProtected = []string{
	`/shipping-address`,
	`/payment-method`,
	`/place-order`,
	`/profile`,
	`/user/(.*)`,
	`/order/(.*)`,
	`/admin`,
}

type Policy struct {
	signInPath string
	protected  []*regexp.Regexp
}

func NewPolicy(signInPath string, patterns ...string) (Policy, error) {
	p := Policy{signInPath: signInPath}
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return Policy{}, fmt.Errorf("compiling protected path %q: %w", pat, err)
		}
		p.protected = append(p.protected, re)
	}
	return p, nil
}

// Protected reports whether path matches any protected pattern.
func (p Policy) Protected(path string) bool {
	for _, re := range p.protected {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// SignInURL is where a denied request is sent, remembering where it was
// going.
func (p Policy) SignInURL(r *http.Request) string {
	q := url.Values{}
	q.Set("callbackUrl", r.URL.RequestURI())
	return p.signInPath + "?" + q.Encode()
}
