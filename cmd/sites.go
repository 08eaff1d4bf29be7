package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/appshell/cli/pkg/native"
	"github.com/appshell/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// SiteService defines the subset of the connector client used for site
// lifecycle operations.
type SiteService interface {
	SiteList(ctx context.Context) (map[string]native.Site, error)
	UninstallSite(ctx context.Context, params native.UninstallSiteParams) error
	UpdateSite(ctx context.Context, params native.UpdateSiteParams) error
	LaunchSite(ctx context.Context, params native.LaunchSiteParams) error
}

// SitesCmd handles installed-site operations independent of cobra.
type SitesCmd struct {
	sites SiteService
}

type SiteListInput struct {
	Output string
}

type SiteUninstallInput struct {
	ID          string
	SkipConfirm bool
}

type SiteUpdateInput struct {
	ID          string
	Name        string
	Description string
	Categories  []string
	Keywords    []string
}

type SiteLaunchInput struct {
	ID  string
	URL string
}

// List prints all installed sites keyed by id.
func (c SitesCmd) List(ctx context.Context, in SiteListInput) error {
	sites, err := c.sites.SiteList(ctx)
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(sites)
	}

	if len(sites) == 0 {
		pterm.Info.Println("No sites installed")
		return nil
	}

	ids := lo.Keys(sites)
	sort.Strings(ids)

	rows := pterm.TableData{{"ID", "Name", "Start URL", "Categories"}}
	for _, id := range ids {
		s := sites[id]
		rows = append(rows, []string{
			id,
			util.FirstOrDash(s.Config.Name, s.Manifest.Name, s.Manifest.ShortName),
			util.OrDash(s.Manifest.StartURL),
			util.JoinOrDash(s.Config.Categories...),
		})
	}
	printListTable(rows)
	return nil
}

// Uninstall removes an installed site.
func (c SitesCmd) Uninstall(ctx context.Context, in SiteUninstallInput) error {
	if !in.SkipConfirm {
		msg := fmt.Sprintf("Uninstall site '%s'?", in.ID)
		pterm.DefaultInteractiveConfirm.DefaultText = msg
		ok, _ := pterm.DefaultInteractiveConfirm.Show()
		if !ok {
			pterm.Info.Println("Uninstall cancelled")
			return nil
		}
	}
	if err := c.sites.UninstallSite(ctx, native.UninstallSiteParams{ID: in.ID}); err != nil {
		return err
	}
	pterm.Success.Printf("Site %s uninstalled\n", in.ID)
	return nil
}

// Update changes the stored overrides of an installed site. Empty
// categories or keywords keep the manifest's own.
func (c SitesCmd) Update(ctx context.Context, in SiteUpdateInput) error {
	if err := c.sites.UpdateSite(ctx, native.UpdateSiteParams{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Categories:  emptyIfNil(in.Categories),
		Keywords:    emptyIfNil(in.Keywords),
	}); err != nil {
		return err
	}
	pterm.Success.Printf("Site %s updated\n", in.ID)
	return nil
}

// Launch starts an installed site, optionally at a URL inside its scope.
func (c SitesCmd) Launch(ctx context.Context, in SiteLaunchInput) error {
	if err := c.sites.LaunchSite(ctx, native.LaunchSiteParams{ID: in.ID, URL: in.URL}); err != nil {
		return err
	}
	pterm.Success.Printf("Site %s launched\n", in.ID)
	return nil
}

// emptyIfNil keeps JSON arrays present on the wire even when unset.
func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage installed sites",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed sites",
	RunE:  runSitesList,
}

var sitesUninstallCmd = &cobra.Command{
	Use:   "uninstall <id>",
	Short: "Uninstall a site",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesUninstall,
}

var sitesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a site's stored overrides",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesUpdate,
}

var sitesLaunchCmd = &cobra.Command{
	Use:   "launch <id>",
	Short: "Launch an installed site",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesLaunch,
}

func init() {
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesUninstallCmd)
	sitesCmd.AddCommand(sitesUpdateCmd)
	sitesCmd.AddCommand(sitesLaunchCmd)

	sitesListCmd.Flags().StringP("output", "o", "", "Output format (json)")

	sitesUninstallCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	sitesUpdateCmd.Flags().String("name", "", "New display name")
	sitesUpdateCmd.Flags().String("description", "", "New description")
	sitesUpdateCmd.Flags().StringArray("category", nil, "Category override (repeatable; omit to keep the manifest's)")
	sitesUpdateCmd.Flags().StringArray("keyword", nil, "Keyword override (repeatable; omit to keep the manifest's)")

	sitesLaunchCmd.Flags().String("url", "", "Open this URL inside the site's scope instead of its start URL")
}

func runSitesList(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	output, _ := cmd.Flags().GetString("output")
	c := SitesCmd{sites: client}
	return c.List(cmd.Context(), SiteListInput{Output: output})
}

func runSitesUninstall(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	skip, _ := cmd.Flags().GetBool("yes")
	c := SitesCmd{sites: client}
	return c.Uninstall(cmd.Context(), SiteUninstallInput{ID: args[0], SkipConfirm: skip})
}

func runSitesUpdate(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	categories, _ := cmd.Flags().GetStringArray("category")
	keywords, _ := cmd.Flags().GetStringArray("keyword")
	c := SitesCmd{sites: client}
	return c.Update(cmd.Context(), SiteUpdateInput{
		ID:          args[0],
		Name:        name,
		Description: description,
		Categories:  categories,
		Keywords:    keywords,
	})
}

func runSitesLaunch(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	url, _ := cmd.Flags().GetString("url")
	c := SitesCmd{sites: client}
	return c.Launch(cmd.Context(), SiteLaunchInput{ID: args[0], URL: url})
}
