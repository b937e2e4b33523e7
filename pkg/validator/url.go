package validator

import (
	"net/url"
)

// IsValidURL reports whether raw parses as an absolute URL with both a scheme
// and a host. It performs no reachability check and has no scheme allow-list.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
