package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for appshell.

To load completions:

Bash:
  $ source <(appshell completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ appshell completion bash > /etc/bash_completion.d/appshell
  # macOS:
  $ appshell completion bash > $(brew --prefix)/etc/bash_completion.d/appshell

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ appshell completion zsh > "${fpath[1]}/_appshell"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ appshell completion fish | source

  # To load completions for each session, execute once:
  $ appshell completion fish > ~/.config/fish/completions/appshell.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
