package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// CrossOriginStartURLError means the resolved start URL does not share the
// document's origin. Manifests failing this never reach the install form.
type CrossOriginStartURLError struct {
	StartURL *url.URL
	Document *url.URL
}

func (e CrossOriginStartURLError) Error() string {
	return fmt.Sprintf("start URL %s is not on the document origin %s", e.StartURL, Origin(e.Document))
}

// OutOfScopeError means a start URL escapes the manifest scope, either by
// origin or by path.
type OutOfScopeError struct {
	StartURL *url.URL
	Scope    *url.URL
}

func (e OutOfScopeError) Error() string {
	return fmt.Sprintf("start URL %s is outside the scope %s", e.StartURL, e.Scope)
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// canonicalHost returns the host with the scheme's default port elided,
// so https://x.test:443 and https://x.test share an origin.
func canonicalHost(u *url.URL) string {
	if u.Port() != "" && u.Port() == defaultPorts[u.Scheme] {
		return u.Hostname()
	}
	return u.Host
}

// Origin returns the scheme://authority origin of a URL.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + canonicalHost(u)
}

// SameOrigin reports whether two URLs share scheme and authority.
func SameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && canonicalHost(a) == canonicalHost(b)
}

// InScope reports whether startURL sits inside scope: same origin and the
// scope path is a prefix of the start URL path. The check is a raw string
// prefix, not segment aware, so a scope of /app also admits /application.
// That matches the shipped behavior and is pinned by tests; do not "fix" it
// here without revisiting the connector side.
func InScope(startURL, scope *url.URL) bool {
	return SameOrigin(startURL, scope) && strings.HasPrefix(pathOrRoot(startURL), pathOrRoot(scope))
}

// pathOrRoot treats an empty path as "/". ResolveReference can hand back
// an empty path when a manifest names a bare origin.
func pathOrRoot(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// ValidateScope enforces scope containment, returning OutOfScopeError on
// violation.
func ValidateScope(startURL, scope *url.URL) error {
	if !InScope(startURL, scope) {
		return OutOfScopeError{StartURL: startURL, Scope: scope}
	}
	return nil
}

// Validate runs the load-time checks on a resolved manifest: the start URL
// must be on the document origin and inside the scope.
func (r Resolved) Validate(documentURL string) error {
	document, err := parseAbsolute(documentURL)
	if err != nil {
		return err
	}
	if !SameOrigin(r.StartURL, document) {
		return CrossOriginStartURLError{StartURL: r.StartURL, Document: document}
	}
	return ValidateScope(r.StartURL, r.Scope)
}

// ValidateCandidate checks a user-entered start URL override against the
// manifest scope. An empty candidate is always valid and means "use the
// manifest default". Safe to call on every edit; it holds no state.
func (r Resolved) ValidateCandidate(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return nil
	}
	u, err := parseAbsolute(candidate)
	if err != nil {
		return err
	}
	return ValidateScope(u, r.Scope)
}
