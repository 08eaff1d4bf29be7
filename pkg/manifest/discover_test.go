package manifest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/page":
			fmt.Fprint(w, `<!doctype html><html><head>
				<link rel="stylesheet" href="/style.css">
				<link rel="manifest" href="../static/manifest.webmanifest">
				</head><body></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	info, err := DiscoverPage(context.Background(), server.Client(), server.URL+"/app/page")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/static/manifest.webmanifest", info.ManifestURL)
	assert.Equal(t, server.URL+"/app/page", info.DocumentURL)
}

func TestDiscoverPageNoManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><link rel="icon" href="/favicon.ico"></head></html>`)
	}))
	defer server.Close()

	_, err := DiscoverPage(context.Background(), server.Client(), server.URL+"/")
	assert.ErrorContains(t, err, "no manifest")
}

func TestDiscoverPageFollowsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/home", http.StatusFound)
		case "/home":
			fmt.Fprint(w, `<html><head><link rel="manifest" href="manifest.webmanifest"></head></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	info, err := DiscoverPage(context.Background(), server.Client(), server.URL+"/")
	require.NoError(t, err)
	// The document URL is the final URL after redirects, and the manifest
	// href resolves against it.
	assert.Equal(t, server.URL+"/home", info.DocumentURL)
	assert.Equal(t, server.URL+"/manifest.webmanifest", info.ManifestURL)
}

func TestObtainURLsDirectManifest(t *testing.T) {
	info, err := ObtainURLs(context.Background(), nil, "https://x.test/static/manifest.webmanifest")
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/static/manifest.webmanifest", info.ManifestURL)
	assert.Equal(t, "https://x.test/static/manifest.webmanifest", info.DocumentURL)
}

func TestFetchManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		fmt.Fprint(w, `{"name":"Example","start_url":"/app","scope":"/app","categories":["news"]}`)
	}))
	defer server.Close()

	m, err := FetchManifest(context.Background(), server.Client(), server.URL+"/manifest.webmanifest")
	require.NoError(t, err)
	assert.Equal(t, "Example", m.Name)
	assert.Equal(t, "/app", m.StartURL)
	assert.Equal(t, []string{"news"}, m.Categories)
}

func TestFetchManifestHTTPError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := FetchManifest(context.Background(), server.Client(), server.URL+"/manifest.webmanifest")
	assert.ErrorContains(t, err, "404")
}

func TestDefaultName(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		want     string
	}{
		{"name wins", Manifest{Name: "Full", ShortName: "Short"}, "Full"},
		{"short name next", Manifest{ShortName: "Short"}, "Short"},
		{"falls back to host", Manifest{}, "x.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.manifest.DefaultName("x.test"))
		})
	}
}
