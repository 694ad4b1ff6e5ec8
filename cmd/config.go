package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wipeworks/saleorwipe/internal/config"
	"github.com/wipeworks/saleorwipe/internal/display"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage saleorwipe configuration",
		Long:  `Manage configuration stored in ~/.saleorwipe/config.yaml`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration: the config file merged with
SALEORWIPE_* environment variables and defaults. The password is masked.

Examples:
  # Show current configuration
  saleorwipe config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd.Context())
			settings, err := cfg.Resolve(nil)
			if err != nil {
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to read configuration: %w", err)
			}

			outputSettings(cmd.OutOrStdout(), cfg.Path(), settings)
			return nil
		},
	}
}

func outputSettings(w io.Writer, path string, s config.Settings) {
	fmt.Fprintf(w, "config file: %s\n", path)
	values := map[string]string{
		config.KeyEndpoint: s.Endpoint,
		config.KeyEmail:    s.Email,
		config.KeyPassword: display.MaskSecret(s.Password),
		config.KeyChannel:  s.Channel,
		config.KeyPageSize: fmt.Sprintf("%d", s.PageSize),
		config.KeyTimeout:  s.Timeout.String(),
		config.KeyMaxPages: fmt.Sprintf("%d", s.MaxPages),
	}
	for _, key := range config.Keys {
		value := values[key]
		if value == "" {
			value = display.ColorWarning("(not set)")
		}
		fmt.Fprintf(w, "%s: %s\n", key, value)
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in the config file",
		Long: `Store a setting in ~/.saleorwipe/config.yaml.

Valid keys: ` + strings.Join(config.Keys, ", ") + `

The file is created with permissions 0600 because it may hold the password.

Examples:
  # Point saleorwipe at a store
  saleorwipe config set endpoint https://shop.example.com/graphql/

  # Wipe another channel by default
  saleorwipe config set channel default-channel`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: configKeyValidArgsFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := loadConfig(cmd.Context()).Set(key, value); err != nil {
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to set %s: %w", key, err)
			}

			if key == config.KeyPassword {
				value = display.MaskSecret(value)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully set %s to %s\n", key, value)
			return nil
		},
	}
}
