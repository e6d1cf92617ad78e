package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

var (
	truthy = map[string]bool{"t": true, "T": true, "true": true, "True": true, "TRUE": true, "1": true}
	falsy  = map[string]bool{"f": true, "F": true, "false": true, "False": true, "FALSE": true, "0": true}
)

func IsTruthy(value string) bool {
	return truthy[value]
}

func IsFalsy(value string) bool {
	return falsy[value]
}

// IsBulkRequest reports whether the content type asks for the bulk extension.
func IsBulkRequest(contentType string) bool {
	return strings.Contains(contentType, "ext=bulk")
}

// AbsoluteReverse joins an API-relative path onto the API domain and appends query.
func AbsoluteReverse(domain, path string, query url.Values) string {
	base, err := url.Parse(domain)
	if err != nil {
		return path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	base = base.JoinPath(segments...)
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if len(query) > 0 {
		q := base.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		base.RawQuery = q.Encode()
	}
	return base.String()
}

// ExtendQuerystringParams adds params to rawURL, keeping any existing query.
func ExtendQuerystringParams(rawURL string, params map[string]string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ExtendQuerystringIfKeyExists copies key from the request query onto rawURL when present.
func ExtendQuerystringIfKeyExists(rawURL string, query url.Values, key string) string {
	if !query.Has(key) {
		return rawURL
	}
	return ExtendQuerystringParams(rawURL, map[string]string{key: query.Get(key)})
}

// IsDeprecated reports whether requestVersion falls outside [minVersion, maxVersion].
// Versions compare component-wise, so 2.10 sorts after 2.9.
func IsDeprecated(requestVersion, minVersion, maxVersion string) bool {
	return compareVersions(requestVersion, minVersion) < 0 || compareVersions(requestVersion, maxVersion) > 0
}

func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x = StringToInt(as[i])
		}
		if i < len(bs) {
			y = StringToInt(bs[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// HashToken is the stored form of a personal access token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
