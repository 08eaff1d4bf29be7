package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// PageInfo carries the pair of URLs everything downstream resolves against.
type PageInfo struct {
	ManifestURL string
	DocumentURL string
}

// maxManifestSize bounds how much of a manifest response is read.
const maxManifestSize = 4 << 20

// DiscoverPage fetches the document at pageURL and locates its
// <link rel="manifest">. The returned document URL is the final URL after
// redirects, which is also the base the manifest href resolves against.
func DiscoverPage(ctx context.Context, client *http.Client, pageURL string) (PageInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if _, err := parseAbsolute(pageURL); err != nil {
		return PageInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return PageInfo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return PageInfo{}, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PageInfo{}, fmt.Errorf("fetch document: %s", resp.Status)
	}

	documentURL := resp.Request.URL
	href, err := findManifestLink(resp.Body)
	if err != nil {
		return PageInfo{}, err
	}

	rel, err := parseURL(href)
	if err != nil {
		return PageInfo{}, err
	}

	return PageInfo{
		ManifestURL: documentURL.ResolveReference(rel).String(),
		DocumentURL: documentURL.String(),
	}, nil
}

// findManifestLink scans the document for the first link with a "manifest"
// rel token and returns its href.
func findManifestLink(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return "", fmt.Errorf("document declares no manifest")
			}
			return "", fmt.Errorf("parse document: %w", tokenizer.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "link" || !hasAttr {
				continue
			}
			var rel, href string
			for {
				key, val, more := tokenizer.TagAttr()
				switch string(key) {
				case "rel":
					rel = string(val)
				case "href":
					href = string(val)
				}
				if !more {
					break
				}
			}
			if href != "" && hasRelToken(rel, "manifest") {
				return href, nil
			}
		}
	}
}

func hasRelToken(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// FetchManifest downloads and parses the manifest document.
func FetchManifest(ctx context.Context, client *http.Client, manifestURL string) (Manifest, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return Manifest{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Manifest{}, fmt.Errorf("fetch manifest: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// ObtainURLs resolves what the install flow starts from: a page URL to
// discover, or a direct manifest URL (anything ending in a manifest-looking
// path is treated as the manifest itself, doubling as its own document).
func ObtainURLs(ctx context.Context, client *http.Client, raw string) (PageInfo, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return PageInfo{}, err
	}
	if isManifestPath(u.Path) {
		return PageInfo{ManifestURL: raw, DocumentURL: raw}, nil
	}
	return DiscoverPage(ctx, client, raw)
}

func isManifestPath(p string) bool {
	return strings.HasSuffix(p, ".webmanifest") || strings.HasSuffix(p, "manifest.json")
}
