package scholinfra

import (
	"net/url"
	"strings"
)

// Quote percent-encodes s for interpolation into a URL template. Spaces
// become %20 and "/" is left intact; letters, digits, and "-_.~" pass
// through unchanged.
func Quote(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return strings.ReplaceAll(escaped, "%2F", "/")
}

// QuotePlus encodes s as a form value, with spaces as "+" and "/" escaped.
func QuotePlus(s string) string {
	return url.QueryEscape(s)
}
