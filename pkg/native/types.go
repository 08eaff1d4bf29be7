package native

// Commands understood by the connector, with the response tag each one
// expects on success.
const (
	CmdGetSystemInfo  = "GetSystemInfo"
	CmdGetSiteList    = "GetSiteList"
	CmdGetProfileList = "GetProfileList"
	CmdCreateProfile  = "CreateProfile"
	CmdUpdateProfile  = "UpdateProfile"
	CmdRemoveProfile  = "RemoveProfile"
	CmdInstallSite    = "InstallSite"
	CmdUninstallSite  = "UninstallSite"
	CmdUpdateSite     = "UpdateSite"
	CmdLaunchSite     = "LaunchSite"

	TagSystemInfo      = "SystemInfo"
	TagSiteList        = "SiteList"
	TagProfileList     = "ProfileList"
	TagProfileCreated  = "ProfileCreated"
	TagProfileUpdated  = "ProfileUpdated"
	TagProfileRemoved  = "ProfileRemoved"
	TagSiteInstalled   = "SiteInstalled"
	TagSiteUninstalled = "SiteUninstalled"
	TagSiteUpdated     = "SiteUpdated"
	TagSiteLaunched    = "SiteLaunched"
	TagError           = "Error"
)

// SystemInfo describes the connector build.
type SystemInfo struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

// SiteConfig holds the user-chosen overrides stored with an installed site.
type SiteConfig struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// SiteManifest is the subset of the site's stored manifest the CLI displays.
type SiteManifest struct {
	Name      string `json:"name,omitempty"`
	ShortName string `json:"short_name,omitempty"`
	StartURL  string `json:"start_url,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// Site is an application already installed by the connector.
type Site struct {
	Config   SiteConfig   `json:"config"`
	Manifest SiteManifest `json:"manifest"`
}

// DisplayName resolves the name shown for a site: the user override wins,
// then the manifest name, then its short name.
func (s Site) DisplayName() string {
	if s.Config.Name != "" {
		return s.Config.Name
	}
	if s.Manifest.Name != "" {
		return s.Manifest.Name
	}
	return s.Manifest.ShortName
}

// Profile is an isolated execution context sites can be installed into,
// keyed by ulid.
type Profile struct {
	Ulid        string `json:"ulid"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateProfileParams names a new profile.
type CreateProfileParams struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateProfileParams renames an existing profile.
type UpdateProfileParams struct {
	Ulid        string `json:"ulid"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// RemoveProfileParams identifies the profile to delete.
type RemoveProfileParams struct {
	Ulid string `json:"ulid"`
}

// InstallRequest asks the connector to install a site. Empty Categories or
// Keywords mean "use the manifest's"; a nil Profile targets the default
// profile.
type InstallRequest struct {
	ManifestURL string   `json:"manifest_url"`
	DocumentURL string   `json:"document_url"`
	StartURL    string   `json:"start_url,omitempty"`
	Profile     *string  `json:"profile"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories"`
	Keywords    []string `json:"keywords"`
}

// UninstallSiteParams identifies the site to remove.
type UninstallSiteParams struct {
	ID string `json:"id"`
}

// UpdateSiteParams changes the stored overrides of an installed site.
type UpdateSiteParams struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories"`
	Keywords    []string `json:"keywords"`
}

// LaunchSiteParams starts an installed site, optionally at a specific URL
// inside its scope.
type LaunchSiteParams struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}
