package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wipeworks/saleorwipe/internal/config"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for saleorwipe.

To load completions:

Bash:
  $ source <(saleorwipe completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ saleorwipe completion bash > /etc/bash_completion.d/saleorwipe
  # macOS:
  $ saleorwipe completion bash > $(brew --prefix)/etc/bash_completion.d/saleorwipe

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ saleorwipe completion zsh > "${fpath[1]}/_saleorwipe"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ saleorwipe completion fish | source
  # To load completions for each session, execute once:
  $ saleorwipe completion fish > ~/.config/fish/completions/saleorwipe.fish

PowerShell:
  PS> saleorwipe completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> saleorwipe completion powershell > saleorwipe.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}

	return cmd
}

// completeConfigKey returns the config keys starting with toComplete.
func completeConfigKey(toComplete string) []string {
	var completions []string
	for _, key := range config.Keys {
		if strings.HasPrefix(key, toComplete) {
			completions = append(completions, key)
		}
	}
	return completions
}

// configKeyValidArgsFunc completes the key argument of config set
func configKeyValidArgsFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Only complete first argument
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeConfigKey(toComplete), cobra.ShellCompDirectiveNoFileComp
}
