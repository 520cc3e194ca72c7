package cache

import (
	"net/url"
	"strings"
)

// Fingerprint derives the cache key of a logical query. Parameters are
// sorted by key and query-escaped, so insertion order never matters and the
// separators cannot appear inside a key or value. Nothing is hashed or
// truncated.
func Fingerprint(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	v := make(url.Values, len(params))
	for k, val := range params {
		v.Set(k, val)
	}
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('?')
	b.WriteString(v.Encode())
	return b.String()
}
