package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/appshell/cli/pkg/manifest"
	"github.com/appshell/cli/pkg/native"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// InstallPeer defines the subset of the connector client the install flow
// uses.
type InstallPeer interface {
	SiteList(ctx context.Context) (map[string]native.Site, error)
	ProfileList(ctx context.Context) (map[string]native.Profile, error)
	CreateProfile(ctx context.Context, params native.CreateProfileParams) (string, error)
	InstallSite(ctx context.Context, req native.InstallRequest) (json.RawMessage, error)
}

// PageSource supplies the manifest/document URL pair for a page and the
// manifest body itself.
type PageSource interface {
	ObtainURLs(ctx context.Context, raw string) (manifest.PageInfo, error)
	FetchManifest(ctx context.Context, manifestURL string) (manifest.Manifest, error)
}

type httpPageSource struct {
	client *http.Client
}

func (s httpPageSource) ObtainURLs(ctx context.Context, raw string) (manifest.PageInfo, error) {
	return manifest.ObtainURLs(ctx, s.client, raw)
}

func (s httpPageSource) FetchManifest(ctx context.Context, manifestURL string) (manifest.Manifest, error) {
	return manifest.FetchManifest(ctx, s.client, manifestURL)
}

// InstallCmd orchestrates the install flow.
type InstallCmd struct {
	peer   InstallPeer
	source PageSource
	prompt Prompter
}

// InstallInput carries the page URL and any overrides given as flags. With
// Yes set the flow runs without prompting and validation failures are hard
// errors.
type InstallInput struct {
	URL         string
	Name        string
	Description string
	StartURL    string
	Profile     string
	NewProfile  string
	Categories  []string
	Keywords    []string
	Yes         bool
	Open        bool
	Output      string
}

type flowState int

const (
	stateLoading flowState = iota
	stateReady
	stateProfileCreation
	stateSubmitting
	stateInstalled
)

// createProfileOption is the sentinel select entry that opens profile
// creation instead of picking an existing profile.
const (
	createProfileOption  = "Create a new profile…"
	defaultProfileOption = "Default profile"
)

// installFlow owns every piece of state for exactly one install. Nothing in
// it is shared or survives the flow.
type installFlow struct {
	state    flowState
	page     manifest.PageInfo
	manifest manifest.Manifest
	resolved manifest.Resolved
	sites    map[string]native.Site
	profiles map[string]native.Profile

	name        string
	description string
	startURL    string
	profile     *string
	categories  []string
	keywords    []string

	// lastSelection is the last real profile choice, restored when
	// profile creation is cancelled.
	lastSelection string
}

// Run drives the flow through its states. Failures before Ready are
// terminal; failures while submitting return to Ready for a retry.
func (c InstallCmd) Run(ctx context.Context, in InstallInput) error {
	flow := &installFlow{state: stateLoading, lastSelection: defaultProfileOption}

	if err := c.load(ctx, flow, in.URL); err != nil {
		return err
	}

	if err := c.applyOverrides(flow, in); err != nil {
		return err
	}

	if !in.Yes {
		// A --profile flag preselects its entry in the interactive select.
		if p, ok := flow.profiles[in.Profile]; ok {
			flow.lastSelection = profileLabel(p)
		}
		if err := c.fill(ctx, flow); err != nil {
			return err
		}
	} else if err := c.resolveProfileFlags(ctx, flow, in); err != nil {
		return err
	}

	return c.submit(ctx, flow, in)
}

// load is the Loading state: obtain the URL pair, fetch and resolve the
// manifest, validate it against the document, and pull the existing site
// and profile lists. Any failure here aborts the flow before it becomes
// interactive.
func (c InstallCmd) load(ctx context.Context, flow *installFlow, raw string) error {
	page, err := c.source.ObtainURLs(ctx, raw)
	if err != nil {
		return err
	}
	man, err := c.source.FetchManifest(ctx, page.ManifestURL)
	if err != nil {
		return err
	}
	resolved, err := manifest.Resolve(man, page.ManifestURL, page.DocumentURL)
	if err != nil {
		return err
	}
	if err := resolved.Validate(page.DocumentURL); err != nil {
		return err
	}

	sites, err := c.peer.SiteList(ctx)
	if err != nil {
		return err
	}
	profiles, err := c.peer.ProfileList(ctx)
	if err != nil {
		return err
	}

	flow.page = page
	flow.manifest = man
	flow.resolved = resolved
	flow.sites = sites
	flow.profiles = profiles
	flow.categories = slices.Clone(man.Categories)
	flow.keywords = slices.Clone(man.Keywords)
	flow.state = stateReady
	return nil
}

// applyOverrides seeds the flow from flags. In --yes mode the same checks
// the prompts re-run per edit become hard errors here.
func (c InstallCmd) applyOverrides(flow *installFlow, in InstallInput) error {
	if err := flow.resolved.ValidateCandidate(in.StartURL); err != nil {
		if in.Yes {
			return err
		}
		pterm.Warning.Printf("Ignoring --start-url: %v\n", err)
	} else {
		flow.startURL = strings.TrimSpace(in.StartURL)
	}

	flow.name = in.Name
	flow.description = in.Description
	if len(in.Categories) > 0 {
		flow.categories = slices.Clone(in.Categories)
	}
	if len(in.Keywords) > 0 {
		flow.keywords = slices.Clone(in.Keywords)
	}

	if in.Yes {
		candidate := flow.name
		if candidate == "" {
			candidate = flow.defaultName()
		}
		if nameTaken(flow.sites, candidate) {
			return fmt.Errorf("a site named %q is already installed", candidate)
		}
	}
	return nil
}

// resolveProfileFlags picks the target profile in --yes mode.
func (c InstallCmd) resolveProfileFlags(ctx context.Context, flow *installFlow, in InstallInput) error {
	switch {
	case in.NewProfile != "":
		created, err := c.peer.CreateProfile(ctx, native.CreateProfileParams{Name: in.NewProfile})
		if err != nil {
			return err
		}
		flow.profile = &created
	case in.Profile != "":
		if err := validateUlid(in.Profile); err != nil {
			return err
		}
		if _, ok := flow.profiles[in.Profile]; !ok {
			return fmt.Errorf("no profile with ulid %s", in.Profile)
		}
		profile := in.Profile
		flow.profile = &profile
	}
	return nil
}

// fill is the Ready state: every field is prompted for, with its validator
// re-run on each entry. Invalid input re-prompts instead of aborting.
func (c InstallCmd) fill(ctx context.Context, flow *installFlow) error {
	pterm.Info.Printf("Installing %s\n", flow.page.DocumentURL)

	for {
		entered, err := c.prompt.Text(fmt.Sprintf("Name (default %q)", flow.defaultName()), flow.name)
		if err != nil {
			return err
		}
		candidate := strings.TrimSpace(entered)
		effective := candidate
		if effective == "" {
			effective = flow.defaultName()
		}
		if nameTaken(flow.sites, effective) {
			pterm.Warning.Printf("A site named %q is already installed; choose another name\n", effective)
			continue
		}
		flow.name = candidate
		break
	}

	description, err := c.prompt.Text("Description", flow.description)
	if err != nil {
		return err
	}
	flow.description = strings.TrimSpace(description)

	for {
		entered, err := c.prompt.Text("Start URL (empty for manifest default)", flow.startURL)
		if err != nil {
			return err
		}
		if err := flow.resolved.ValidateCandidate(entered); err != nil {
			pterm.Warning.Printf("Invalid start URL: %v\n", err)
			continue
		}
		flow.startURL = strings.TrimSpace(entered)
		break
	}

	if err := c.chooseProfile(ctx, flow); err != nil {
		return err
	}

	categories, err := c.promptTags("Categories", flow.categories)
	if err != nil {
		return err
	}
	flow.categories = categories

	keywords, err := c.promptTags("Keywords", flow.keywords)
	if err != nil {
		return err
	}
	flow.keywords = keywords

	return nil
}

// chooseProfile runs the profile select, entering the ProfileCreation state
// when the sentinel option is picked. Creation failures surface the error
// and drop back to the select with the last real choice preselected.
func (c InstallCmd) chooseProfile(ctx context.Context, flow *installFlow) error {
	for {
		options, byLabel := profileOptions(flow.profiles)
		choice, err := c.prompt.Select("Profile", options, flow.lastSelection)
		if err != nil {
			return err
		}

		if choice == defaultProfileOption {
			flow.profile = nil
			flow.lastSelection = choice
			return nil
		}
		if ulid, ok := byLabel[choice]; ok {
			flow.profile = &ulid
			flow.lastSelection = choice
			return nil
		}

		// Sentinel: create a new profile.
		flow.state = stateProfileCreation
		created, label, err := c.createProfile(ctx, flow)
		flow.state = stateReady
		if err != nil {
			pterm.Error.Printf("Could not create profile: %v\n", err)
			continue
		}
		if created == nil {
			// Cancelled; re-select with the previous choice intact.
			continue
		}
		flow.profile = created
		flow.lastSelection = label
		return nil
	}
}

// createProfile is the ProfileCreation sub-dialog. A nil ulid with nil
// error means the user cancelled.
func (c InstallCmd) createProfile(ctx context.Context, flow *installFlow) (*string, string, error) {
	name, err := c.prompt.Text("New profile name", "")
	if err != nil {
		return nil, "", err
	}
	description, err := c.prompt.Text("New profile description", "")
	if err != nil {
		return nil, "", err
	}
	ok, err := c.prompt.Confirm(fmt.Sprintf("Create profile %q?", name))
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", nil
	}

	created, err := c.peer.CreateProfile(ctx, native.CreateProfileParams{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return nil, "", err
	}

	profile := native.Profile{Ulid: created, Name: strings.TrimSpace(name)}
	flow.profiles[created] = profile
	pterm.Success.Printf("Profile created: %s\n", created)
	return &created, profileLabel(profile), nil
}

func (c InstallCmd) promptTags(label string, current []string) ([]string, error) {
	entered, err := c.prompt.Text(label+" (comma separated)", strings.Join(current, ", "))
	if err != nil {
		return nil, err
	}
	return splitTags(entered), nil
}

// submit is the Submitting state. Category and keyword overrides are sent
// only when they differ from the manifest's own, element-wise in order.
// Failures return to Ready: interactively the user may retry; otherwise the
// error propagates.
func (c InstallCmd) submit(ctx context.Context, flow *installFlow, in InstallInput) error {
	req := native.InstallRequest{
		ManifestURL: flow.page.ManifestURL,
		DocumentURL: flow.page.DocumentURL,
		StartURL:    flow.startURL,
		Profile:     flow.profile,
		Name:        flow.name,
		Description: flow.description,
		Categories:  overrideIfChanged(flow.categories, flow.manifest.Categories),
		Keywords:    overrideIfChanged(flow.keywords, flow.manifest.Keywords),
	}

	for {
		flow.state = stateSubmitting
		result, err := c.peer.InstallSite(ctx, req)
		if err != nil {
			flow.state = stateReady
			if in.Yes {
				return err
			}
			pterm.Error.Printf("Install failed: %v\n", err)
			retry, perr := c.prompt.Confirm("Retry installation?")
			if perr != nil {
				return perr
			}
			if !retry {
				return err
			}
			continue
		}

		flow.state = stateInstalled
		pterm.Success.Printf("Installed %s\n", flow.effectiveName())

		if in.Output == "json" && len(result) > 0 {
			fmt.Println(string(result))
		}
		if in.Open {
			if err := browser.OpenURL(flow.launchURL()); err != nil {
				pterm.Warning.Printf("Could not open browser: %v\n", err)
			}
		}
		return nil
	}
}

func (f *installFlow) defaultName() string {
	return f.manifest.DefaultName(f.resolved.Scope.Host)
}

func (f *installFlow) effectiveName() string {
	if f.name != "" {
		return f.name
	}
	return f.defaultName()
}

func (f *installFlow) launchURL() string {
	if f.startURL != "" {
		return f.startURL
	}
	return f.resolved.StartURL.String()
}

// nameTaken reports whether any installed site already resolves to the
// candidate display name.
func nameTaken(sites map[string]native.Site, candidate string) bool {
	return lo.ContainsBy(lo.Values(sites), func(s native.Site) bool {
		return s.DisplayName() == candidate
	})
}

// overrideIfChanged returns the selection as an override, or an empty slice
// when it matches the manifest's values exactly (meaning "defer to the
// manifest").
func overrideIfChanged(selected, original []string) []string {
	if slices.Equal(selected, original) {
		return []string{}
	}
	return slices.Clone(selected)
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// profileOptions builds the select entries: the default profile, each
// existing profile sorted by ulid, then the creation sentinel.
func profileOptions(profiles map[string]native.Profile) ([]string, map[string]string) {
	ulids := lo.Keys(profiles)
	sort.Strings(ulids)

	options := []string{defaultProfileOption}
	byLabel := make(map[string]string, len(profiles))
	for _, id := range ulids {
		label := profileLabel(profiles[id])
		options = append(options, label)
		byLabel[label] = id
	}
	return append(options, createProfileOption), byLabel
}

func profileLabel(p native.Profile) string {
	if p.Name == "" {
		return p.Ulid
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Ulid)
}

var installCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Install a page as a standalone application",
	Long: `Install a page as a standalone application.

The URL may be the page itself (its manifest link is discovered) or a
direct manifest URL. Without --yes the flow is interactive and every flag
value becomes the prompt's initial answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().String("name", "", "Display name override")
	installCmd.Flags().String("description", "", "Description override")
	installCmd.Flags().String("start-url", "", "Start URL override (must stay inside the manifest scope)")
	installCmd.Flags().String("profile", "", "Install into this profile ulid")
	installCmd.Flags().String("new-profile", "", "Create a profile with this name and install into it")
	installCmd.Flags().StringArray("category", nil, "Category override (repeatable)")
	installCmd.Flags().StringArray("keyword", nil, "Keyword override (repeatable)")
	installCmd.Flags().BoolP("yes", "y", false, "Run without prompting")
	installCmd.Flags().Bool("open", false, "Open the installed app's start URL afterwards")
	installCmd.Flags().StringP("output", "o", "", "Output format (json)")
	installCmd.MarkFlagsMutuallyExclusive("profile", "new-profile")
}

func runInstall(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	startURL, _ := cmd.Flags().GetString("start-url")
	profile, _ := cmd.Flags().GetString("profile")
	newProfile, _ := cmd.Flags().GetString("new-profile")
	categories, _ := cmd.Flags().GetStringArray("category")
	keywords, _ := cmd.Flags().GetStringArray("keyword")
	yes, _ := cmd.Flags().GetBool("yes")
	open, _ := cmd.Flags().GetBool("open")
	output, _ := cmd.Flags().GetString("output")

	c := InstallCmd{
		peer:   client,
		source: httpPageSource{client: http.DefaultClient},
		prompt: ptermPrompter{},
	}
	return c.Run(cmd.Context(), InstallInput{
		URL:         args[0],
		Name:        name,
		Description: description,
		StartURL:    startURL,
		Profile:     profile,
		NewProfile:  newProfile,
		Categories:  categories,
		Keywords:    keywords,
		Yes:         yes,
		Open:        open,
		Output:      output,
	})
}
