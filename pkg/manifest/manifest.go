// Package manifest resolves and validates web application manifests against
// the document that referenced them.
package manifest

import (
	"encoding/json"
	"fmt"
)

// Manifest is the subset of a web application manifest the installer uses.
// StartURL and Scope are kept as written; Resolve turns them into absolute
// URLs.
type Manifest struct {
	Name        string   `json:"name,omitempty"`
	ShortName   string   `json:"short_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	StartURL    string   `json:"start_url,omitempty"`
	Scope       string   `json:"scope,omitempty"`
}

// Parse decodes a manifest document.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// DefaultName resolves the name presented for a manifest when the user has
// not chosen one: the manifest name, then its short name, then the scope
// host.
func (m Manifest) DefaultName(scopeHost string) string {
	if m.Name != "" {
		return m.Name
	}
	if m.ShortName != "" {
		return m.ShortName
	}
	return scopeHost
}
