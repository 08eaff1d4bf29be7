package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/appshell/cli/pkg/manifest"
	"github.com/appshell/cli/pkg/native"
	"github.com/pterm/pterm"
)

// captureOutput routes pterm output into a buffer for the duration of the
// test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	pterm.DisableColor()
	pterm.SetDefaultOutput(&buf)
	// The package-level prefix printers copy the default writer at init
	// time, so SetDefaultOutput alone does not redirect them.
	printers := []*pterm.PrefixPrinter{&pterm.Info, &pterm.Success, &pterm.Warning, &pterm.Error}
	for _, p := range printers {
		p.Writer = &buf
	}
	t.Cleanup(func() {
		pterm.SetDefaultOutput(os.Stdout)
		for _, p := range printers {
			p.Writer = os.Stdout
		}
		pterm.EnableColor()
	})
	return &buf
}

// keepInitial makes a scripted prompt accept the seeded initial value,
// like a user pressing enter.
const keepInitial = "\x00keep"

// scriptedPrompter answers prompts from queues. Running out of answers
// fails the test: the flow asked more than the script expected.
type scriptedPrompter struct {
	t        *testing.T
	texts    []string
	selects  []string
	confirms []bool
}

func (p *scriptedPrompter) Text(label, initial string) (string, error) {
	p.t.Helper()
	if len(p.texts) == 0 {
		p.t.Fatalf("unexpected text prompt %q", label)
	}
	v := p.texts[0]
	p.texts = p.texts[1:]
	if v == keepInitial {
		return initial, nil
	}
	return v, nil
}

func (p *scriptedPrompter) Select(label string, options []string, initial string) (string, error) {
	p.t.Helper()
	if len(p.selects) == 0 {
		p.t.Fatalf("unexpected select prompt %q", label)
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	if v == keepInitial {
		return initial, nil
	}
	return v, nil
}

func (p *scriptedPrompter) Confirm(label string) (bool, error) {
	p.t.Helper()
	if len(p.confirms) == 0 {
		p.t.Fatalf("unexpected confirm prompt %q", label)
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

// fakeInstallPeer implements InstallPeer with scripted responses.
type fakeInstallPeer struct {
	sites     map[string]native.Site
	profiles  map[string]native.Profile
	createFn  func(native.CreateProfileParams) (string, error)
	installFn func(native.InstallRequest) (json.RawMessage, error)

	created  []native.CreateProfileParams
	installs []native.InstallRequest
}

func (f *fakeInstallPeer) SiteList(ctx context.Context) (map[string]native.Site, error) {
	if f.sites == nil {
		return map[string]native.Site{}, nil
	}
	return f.sites, nil
}

func (f *fakeInstallPeer) ProfileList(ctx context.Context) (map[string]native.Profile, error) {
	if f.profiles == nil {
		return map[string]native.Profile{}, nil
	}
	return f.profiles, nil
}

func (f *fakeInstallPeer) CreateProfile(ctx context.Context, params native.CreateProfileParams) (string, error) {
	f.created = append(f.created, params)
	if f.createFn != nil {
		return f.createFn(params)
	}
	return "01ARZ3NDEKTSV4RRFFQ69G5FAV", nil
}

func (f *fakeInstallPeer) InstallSite(ctx context.Context, req native.InstallRequest) (json.RawMessage, error) {
	f.installs = append(f.installs, req)
	if f.installFn != nil {
		return f.installFn(req)
	}
	return nil, nil
}

// fakePageSource serves a fixed URL pair and manifest.
type fakePageSource struct {
	page    manifest.PageInfo
	man     manifest.Manifest
	pageErr error
	manErr  error
}

func (f fakePageSource) ObtainURLs(ctx context.Context, raw string) (manifest.PageInfo, error) {
	if f.pageErr != nil {
		return manifest.PageInfo{}, f.pageErr
	}
	return f.page, nil
}

func (f fakePageSource) FetchManifest(ctx context.Context, manifestURL string) (manifest.Manifest, error) {
	if f.manErr != nil {
		return manifest.Manifest{}, f.manErr
	}
	return f.man, nil
}
