package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wipeworks/saleorwipe/internal/config"
	"github.com/wipeworks/saleorwipe/internal/logging"
)

type configPathKey struct{}

// loadConfig returns the config selected by --config, $SALEORWIPE_CONFIG or
// the default location.
func loadConfig(ctx context.Context) *config.Config {
	if path, ok := ctx.Value(configPathKey{}).(string); ok && path != "" {
		return config.NewWithPath(path)
	}
	return config.New()
}

// Version is set at build time with -ldflags "-X .../cmd.Version=v1.2.3".
var Version = "dev"

// NewRootCmd builds the full command tree. Every call returns fresh flag
// state, so tests can execute commands in parallel.
func NewRootCmd() *cobra.Command {
	var (
		configPath  string
		logAPICalls bool
		quietMode   bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "saleorwipe",
		Short: "Remove every product from a Saleor sales channel",
		Long: `saleorwipe is a maintenance tool for Saleor GraphQL stores.

It logs in with a staff account, pages through every product of a sales
channel and removes all of them with a single bulk delete.

It provides functionality for:
- Checking credentials against the API (login)
- Listing the product ids that would be removed (list products)
- Wiping the channel, with confirmation, dry-run and an error log (wipe products)
- Configuration of endpoint, credentials and channel (config)`,
		Version:       Version,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if logAPICalls {
				ctx = logging.EnableLogging(ctx)
			}
			if quietMode {
				ctx = logging.EnableQuiet(ctx)
			}
			if configPath != "" {
				ctx = context.WithValue(ctx, configPathKey{}, configPath)
			}
			cmd.SetContext(ctx)

			return config.LoadDotEnv(".env")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "saleorwipe version %s\n\n", Version)
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.saleorwipe/config.yaml, or $SALEORWIPE_CONFIG)")
	cmd.PersistentFlags().BoolVar(&logAPICalls, "log-api-calls", false, "Log all API calls with timing and categorization to stderr")
	cmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Only print warnings, errors and requested data")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print debug logs such as per-page progress")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newWipeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

// Execute runs the root command. Ctrl-C cancels the in-flight request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
