package utils

import (
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

// Errors
var (
	ErrEmptyURL    = &url.Error{Op: "normalize", URL: "", Err: &errStr{"empty url"}}
	ErrMissingHost = &url.Error{Op: "normalize", URL: "", Err: &errStr{"missing host"}}
)

type errStr struct{ s string }

func (e *errStr) Error() string { return e.s }

// Normalize returns a deterministic canonical URL string or an error.
// Relative input is resolved against baseOrigin when one is given. The
// canonical form lowercases scheme and host, converts IDN hosts to punycode,
// strips default ports, drops fragments and userinfo, cleans the path,
// removes the trailing slash (except on the root path) and sorts query
// parameters so equal URLs compare equal as strings.
func Normalize(raw string, baseOrigin string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if !u.IsAbs() && baseOrigin != "" {
		base, err := url.Parse(baseOrigin)
		if err != nil {
			return "", err
		}
		u = base.ResolveReference(u)
	}

	if u.Host == "" {
		return "", ErrMissingHost
	}

	u.Scheme = strings.ToLower(u.Scheme)

	// Lowercase host and convert IDN -> punycode
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	// Preserve non-default port only
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	} else if port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}

	// Drop userinfo (credentials)
	u.User = nil

	cleanPath := path.Clean(u.Path)
	if cleanPath == "." {
		cleanPath = "/"
	}
	if len(cleanPath) > 1 {
		cleanPath = strings.TrimRight(cleanPath, "/")
		if cleanPath == "" {
			cleanPath = "/"
		}
	}
	u.Path = cleanPath

	u.Fragment = ""

	// Sort query keys and values for deterministic encoding
	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := url.Values{}
	for _, k := range keys {
		values := q[k]
		sort.Strings(values)
		for _, v := range values {
			ordered.Add(k, v)
		}
	}
	u.RawQuery = ordered.Encode()

	return u.String(), nil
}

// Origin extracts the scheme://host[:port] origin of a URL.
func Origin(raw string) (string, error) {
	norm, err := Normalize(raw, "")
	if err != nil {
		return "", err
	}
	u, err := url.Parse(norm)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}

// SameOrigin reports whether raw shares scheme+host+port with baseOrigin.
// Unparsable input is never same-origin.
func SameOrigin(raw string, baseOrigin string) bool {
	a, err := Origin(raw)
	if err != nil {
		return false
	}
	b, err := Origin(baseOrigin)
	if err != nil {
		return false
	}
	return a == b
}
