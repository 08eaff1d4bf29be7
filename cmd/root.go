package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/appshell/cli/pkg/native"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version is set by goreleaser via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "appshell",
	Short: "Install web applications as standalone apps",
	Long: `appshell validates a page's web app manifest and drives the local
appshell-connector service to install the page as a standalone application,
optionally under a dedicated execution profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Log connector protocol traffic")
	rootCmd.PersistentFlags().String("connector", "", "Path to the connector binary (default: APPSHELL_CONNECTOR or appshell-connector on PATH)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-call connector timeout (default: APPSHELL_TIMEOUT or none)")

	// Accept snake_case spellings of every flag.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(statusCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// getConnectorClient spawns the connector and wraps it in a protocol
// client. Callers own the returned client and must Close it.
func getConnectorClient(cmd *cobra.Command) (*native.Client, error) {
	path, _ := cmd.Flags().GetString("connector")
	if path == "" {
		path = native.ConnectorPath()
	}

	transport, err := native.Spawn(path)
	if err != nil {
		return nil, err
	}

	var opts []native.Option
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger := log.New(os.Stderr)
		logger.SetLevel(log.DebugLevel)
		opts = append(opts, native.WithLogger(logger))
	}
	if timeout := callTimeout(cmd); timeout > 0 {
		opts = append(opts, native.WithTimeout(timeout))
	}

	return native.NewClient(transport, opts...), nil
}

// callTimeout resolves the per-call timeout: flag first, then
// APPSHELL_TIMEOUT. Zero keeps calls unbounded, matching the channel's
// historical behavior.
func callTimeout(cmd *cobra.Command) time.Duration {
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		return timeout
	}
	if raw := os.Getenv("APPSHELL_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return 0
}
