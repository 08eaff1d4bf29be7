package cmd

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/appshell/cli/pkg/native"
	"github.com/appshell/cli/pkg/util"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// supportedConnector is the connector version range this CLI speaks the
// protocol of.
const supportedConnector = ">= 1.0.0, < 2.0.0"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the connector and its version compatibility",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")
}

// SystemInfoService defines the subset of the connector client status uses.
type SystemInfoService interface {
	SystemInfo(ctx context.Context) (native.SystemInfo, error)
}

// StatusCmd handles connector status checks independent of cobra.
type StatusCmd struct {
	connector SystemInfoService
}

type StatusInput struct {
	Output string
}

type statusReport struct {
	CLIVersion       string `json:"cli_version"`
	ConnectorVersion string `json:"connector_version"`
	Platform         string `json:"platform"`
	Compatible       bool   `json:"compatible"`
}

var statusTitle = lipgloss.NewStyle().Bold(true)

func (s StatusCmd) Run(ctx context.Context, in StatusInput) error {
	info, err := s.connector.SystemInfo(ctx)
	if err != nil {
		pterm.Error.Println("Could not reach the connector. Is appshell-connector installed?")
		return err
	}

	compatible, compatErr := connectorCompatible(info.Version)

	if in.Output == "json" {
		return util.PrintPrettyJSON(statusReport{
			CLIVersion:       version,
			ConnectorVersion: info.Version,
			Platform:         info.Platform,
			Compatible:       compatible,
		})
	}

	pterm.Println()
	pterm.Println("  " + statusTitle.Render("appshell status"))
	pterm.Println()
	rows := pterm.TableData{
		{"CLI version", version},
		{"Connector version", util.OrDash(info.Version)},
		{"Platform", util.OrDash(info.Platform)},
	}
	printDetailTable(rows)

	switch {
	case compatErr != nil:
		pterm.Warning.Printf("Could not compare connector version %q: %v\n", info.Version, compatErr)
	case compatible:
		pterm.Success.Println("Connector is compatible")
	default:
		pterm.Warning.Printf("Connector %s is outside the supported range (%s); upgrade the connector\n", info.Version, supportedConnector)
	}
	return nil
}

// connectorCompatible checks the reported version against the supported
// range. Dev builds without a parseable version fail soft with an error.
func connectorCompatible(reported string) (bool, error) {
	v, err := semver.NewVersion(reported)
	if err != nil {
		return false, fmt.Errorf("invalid version: %w", err)
	}
	constraint, err := semver.NewConstraint(supportedConnector)
	if err != nil {
		return false, err
	}
	return constraint.Check(v), nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := getConnectorClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	output, _ := cmd.Flags().GetString("output")
	s := StatusCmd{connector: client}
	return s.Run(cmd.Context(), StatusInput{Output: output})
}
