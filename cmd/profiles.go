package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/appshell/cli/pkg/native"
	"github.com/appshell/cli/pkg/util"
	"github.com/oklog/ulid/v2"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// ProfileService defines the subset of the connector client used for
// profile management.
type ProfileService interface {
	ProfileList(ctx context.Context) (map[string]native.Profile, error)
	CreateProfile(ctx context.Context, params native.CreateProfileParams) (string, error)
	UpdateProfile(ctx context.Context, params native.UpdateProfileParams) error
	RemoveProfile(ctx context.Context, params native.RemoveProfileParams) error
}

// ProfilesCmd handles profile operations independent of cobra.
type ProfilesCmd struct {
	profiles ProfileService
}

type ProfileListInput struct {
	Output string
}

type ProfileCreateInput struct {
	Name        string
	Description string
}

type ProfileUpdateInput struct {
	Ulid        string
	Name        string
	Description string
}

type ProfileRemoveInput struct {
	Ulid        string
	SkipConfirm bool
}

// List prints all profiles keyed by ulid.
func (c ProfilesCmd) List(ctx context.Context, in ProfileListInput) error {
	profiles, err := c.profiles.ProfileList(ctx)
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(profiles)
	}

	if len(profiles) == 0 {
		pterm.Info.Println("No profiles found")
		return nil
	}

	ulids := lo.Keys(profiles)
	sort.Strings(ulids)

	rows := pterm.TableData{{"Ulid", "Name", "Description"}}
	for _, id := range ulids {
		p := profiles[id]
		rows = append(rows, []string{p.Ulid, util.OrDash(p.Name), util.Truncate(util.OrDash(p.Description), 48)})
	}
	printListTable(rows)
	return nil
}

// Create creates a new profile and prints its ulid.
func (c ProfilesCmd) Create(ctx context.Context, in ProfileCreateInput) error {
	created, err := c.profiles.CreateProfile(ctx, native.CreateProfileParams{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return err
	}
	pterm.Success.Printf("Profile created: %s\n", created)
	return nil
}

// Update renames an existing profile.
func (c ProfilesCmd) Update(ctx context.Context, in ProfileUpdateInput) error {
	if err := validateUlid(in.Ulid); err != nil {
		return err
	}
	if err := c.profiles.UpdateProfile(ctx, native.UpdateProfileParams{
		Ulid:        in.Ulid,
		Name:        in.Name,
		Description: in.Description,
	}); err != nil {
		return err
	}
	pterm.Success.Printf("Profile %s updated\n", in.Ulid)
	return nil
}

// Remove deletes a profile and everything installed in it.
func (c ProfilesCmd) Remove(ctx context.Context, in ProfileRemoveInput) error {
	if err := validateUlid(in.Ulid); err != nil {
		return err
	}
	if !in.SkipConfirm {
		msg := fmt.Sprintf("Remove profile '%s' and all sites installed in it?", in.Ulid)
		pterm.DefaultInteractiveConfirm.DefaultText = msg
		ok, _ := pterm.DefaultInteractiveConfirm.Show()
		if !ok {
			pterm.Info.Println("Removal cancelled")
			return nil
		}
	}
	if err := c.profiles.RemoveProfile(ctx, native.RemoveProfileParams{Ulid: in.Ulid}); err != nil {
		return err
	}
	pterm.Success.Printf("Profile %s removed\n", in.Ulid)
	return nil
}

func validateUlid(raw string) error {
	if _, err := ulid.Parse(raw); err != nil {
		return fmt.Errorf("invalid profile ulid %q: %w", raw, err)
	}
	return nil
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage execution profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE:  runProfilesList,
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a profile",
	RunE:  runProfilesCreate,
}

var profilesUpdateCmd = &cobra.Command{
	Use:   "update <ulid>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesUpdate,
}

var profilesRemoveCmd = &cobra.Command{
	Use:   "remove <ulid>",
	Short: "Remove a profile and all sites installed in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesRemove,
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesCreateCmd)
	profilesCmd.AddCommand(profilesUpdateCmd)
	profilesCmd.AddCommand(profilesRemoveCmd)

	profilesListCmd.Flags().StringP("output", "o", "", "Output format (json)")

	profilesCreateCmd.Flags().String("name", "", "Profile name")
	profilesCreateCmd.Flags().String("description", "", "Profile description")

	profilesUpdateCmd.Flags().String("name", "", "New profile name")
	profilesUpdateCmd.Flags().String("description", "", "New profile description")

	profilesRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	output, _ := cmd.Flags().GetString("output")
	c := ProfilesCmd{profiles: client}
	return c.List(cmd.Context(), ProfileListInput{Output: output})
}

func runProfilesCreate(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	c := ProfilesCmd{profiles: client}
	return c.Create(cmd.Context(), ProfileCreateInput{Name: name, Description: description})
}

func runProfilesUpdate(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	c := ProfilesCmd{profiles: client}
	return c.Update(cmd.Context(), ProfileUpdateInput{Ulid: args[0], Name: name, Description: description})
}

func runProfilesRemove(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	skip, _ := cmd.Flags().GetBool("yes")
	c := ProfilesCmd{profiles: client}
	return c.Remove(cmd.Context(), ProfileRemoveInput{Ulid: args[0], SkipConfirm: skip})
}
