package manifest

import (
	"fmt"
	"net/url"
)

// MalformedURLError wraps a URL string that could not be parsed. It is
// fatal to the resolution step that hit it.
type MalformedURLError struct {
	Value string
	Err   error
}

func (e MalformedURLError) Error() string {
	return fmt.Sprintf("malformed URL %q: %v", e.Value, e.Err)
}

func (e MalformedURLError) Unwrap() error {
	return e.Err
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, MalformedURLError{Value: raw, Err: err}
	}
	return u, nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := parseURL(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, MalformedURLError{Value: raw, Err: fmt.Errorf("not an absolute URL")}
	}
	// net/url leaves a bare origin's path empty; serialize it as "/" the
	// way a browser address bar would.
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// Resolved holds the absolute start URL and scope computed for a manifest.
type Resolved struct {
	StartURL *url.URL
	Scope    *url.URL
}

// Resolve computes the absolute start URL and scope for a manifest found at
// manifestURL on the document at documentURL. start_url resolves against
// the manifest URL and defaults to the document URL; scope resolves against
// the document URL and defaults to "." against the resolved start URL.
// Pure; no network.
func Resolve(m Manifest, manifestURL, documentURL string) (Resolved, error) {
	manifestBase, err := parseAbsolute(manifestURL)
	if err != nil {
		return Resolved{}, err
	}
	documentBase, err := parseAbsolute(documentURL)
	if err != nil {
		return Resolved{}, err
	}

	startURL := documentBase
	if m.StartURL != "" {
		rel, err := parseURL(m.StartURL)
		if err != nil {
			return Resolved{}, err
		}
		startURL = manifestBase.ResolveReference(rel)
	}

	var scope *url.URL
	if m.Scope != "" {
		rel, err := parseURL(m.Scope)
		if err != nil {
			return Resolved{}, err
		}
		scope = documentBase.ResolveReference(rel)
	} else {
		scope = startURL.ResolveReference(&url.URL{Path: "."})
	}

	return Resolved{StartURL: startURL, Scope: scope}, nil
}
