package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for aperture.

To load completions:

Bash:
  $ source <(aperture completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ aperture completion bash > /etc/bash_completion.d/aperture
  # macOS:
  $ aperture completion bash > $(brew --prefix)/etc/bash_completion.d/aperture

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ aperture completion zsh > "${fpath[1]}/_aperture"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ aperture completion fish | source

  # To load completions for each session, execute once:
  $ aperture completion fish > ~/.config/fish/completions/aperture.fish

PowerShell:
  PS> aperture completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> aperture completion powershell > aperture.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
