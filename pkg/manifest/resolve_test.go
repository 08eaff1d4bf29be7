package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	// No start_url and no scope: both fall back to the document URL, with
	// the scope being "." against the start URL.
	resolved, err := Resolve(Manifest{}, "https://x.test/app/manifest.webmanifest", "https://x.test/app/page")
	require.NoError(t, err)

	assert.Equal(t, "https://x.test/app/page", resolved.StartURL.String())
	assert.Equal(t, "https://x.test/app/", resolved.Scope.String())
}

func TestResolveBareOriginDocument(t *testing.T) {
	// A bare-origin document URL parses with an empty path; resolution
	// serializes it as "/" so the defaulted start URL stays in scope.
	resolved, err := Resolve(Manifest{}, "https://x.test/manifest.webmanifest", "https://x.test")
	require.NoError(t, err)

	assert.Equal(t, "https://x.test/", resolved.StartURL.String())
	assert.Equal(t, "https://x.test/", resolved.Scope.String())
	assert.NoError(t, resolved.Validate("https://x.test"))
}

func TestResolveIdempotent(t *testing.T) {
	m := Manifest{}
	first, err := Resolve(m, "https://x.test/manifest.webmanifest", "https://x.test/page")
	require.NoError(t, err)

	// Re-resolving with the already-resolved start URL as input changes
	// nothing.
	again, err := Resolve(Manifest{StartURL: first.StartURL.String()}, "https://x.test/manifest.webmanifest", "https://x.test/page")
	require.NoError(t, err)
	assert.Equal(t, first.StartURL.String(), again.StartURL.String())
	assert.Equal(t, first.Scope.String(), again.Scope.String())
}

func TestResolveStartURLAgainstManifestURL(t *testing.T) {
	// start_url resolves against the manifest URL, not the document URL.
	resolved, err := Resolve(
		Manifest{StartURL: "home"},
		"https://x.test/static/manifest.webmanifest",
		"https://x.test/somewhere/else",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/static/home", resolved.StartURL.String())
}

func TestResolveScopeAgainstDocumentURL(t *testing.T) {
	resolved, err := Resolve(
		Manifest{Scope: "app/"},
		"https://x.test/static/manifest.webmanifest",
		"https://x.test/root/page",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/root/app/", resolved.Scope.String())
}

func TestResolveScopeDefaultStripsQueryAndFragment(t *testing.T) {
	resolved, err := Resolve(
		Manifest{StartURL: "/app/page?tab=1#top"},
		"https://x.test/manifest.webmanifest",
		"https://x.test/",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/app/page?tab=1#top", resolved.StartURL.String())
	assert.Equal(t, "https://x.test/app/", resolved.Scope.String())
}

func TestResolveAbsoluteStartURL(t *testing.T) {
	resolved, err := Resolve(
		Manifest{StartURL: "https://x.test/app", Scope: "/app"},
		"https://x.test/manifest.webmanifest",
		"https://x.test/app/page",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/app", resolved.StartURL.String())
	assert.Equal(t, "https://x.test/app", resolved.Scope.String())
}

func TestResolveMalformedURLs(t *testing.T) {
	tests := []struct {
		name        string
		manifest    Manifest
		manifestURL string
		documentURL string
	}{
		{"relative manifest URL", Manifest{}, "manifest.webmanifest", "https://x.test/"},
		{"relative document URL", Manifest{}, "https://x.test/manifest.webmanifest", "page"},
		{"unparseable start_url", Manifest{StartURL: "https://x.test/%zz"}, "https://x.test/manifest.webmanifest", "https://x.test/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.manifest, tt.manifestURL, tt.documentURL)
			var malformed MalformedURLError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}
