package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wipeworks/saleorwipe/internal/display"
	"github.com/wipeworks/saleorwipe/internal/logging"
	"github.com/wipeworks/saleorwipe/internal/prompts"
	"github.com/wipeworks/saleorwipe/internal/wipe"
)

// newWipeCmd creates the wipe parent command with its subcommands.
func newWipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete resources in bulk",
		Long: `Delete resources from a Saleor store in bulk.

Available subcommands:
  products    Delete every product of a sales channel`,
	}

	cmd.AddCommand(newWipeProductsCmd())

	return cmd
}

func newWipeProductsCmd() *cobra.Command {
	var (
		dryRun     bool
		force      bool
		yes        bool
		jsonOutput bool
		errorLog   string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Delete every product of a sales channel",
		Long: `Log in, collect the id of every product in the sales channel and delete
them all with one productBulkDelete mutation.

Before deleting, the number of products is shown and you are asked to type
the channel name. Use --force to skip confirmation or --dry-run to only
collect the ids.

Products the API refuses to delete are reported and written to --error-log;
they do not make the command fail.

Examples:
  # Wipe the configured channel, with confirmation
  saleorwipe wipe products

  # See how many products would be deleted
  saleorwipe wipe products --dry-run

  # Wipe without asking and keep a log of refused products
  saleorwipe wipe products --force --error-log errors.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := newSession(cmd, errorLog)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			defer cleanup()

			cmd.SilenceUsage = true
			return executeWipeProducts(cmd.Context(), s.dependencies(), s.params(dryRun), wipeOptions{
				Force: force || yes,
				JSON:  jsonOutput,
				Quiet: logging.IsQuiet(cmd.Context()),
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	addConnectionFlags(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Collect product ids without deleting")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Alias for --force")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report in JSON format")
	cmd.Flags().StringVar(&errorLog, "error-log", "", "Append warnings and errors as JSON lines to this file")

	return cmd
}

type wipeOptions struct {
	Force bool
	JSON  bool
	Quiet bool
}

// confirmWipe asks the operator to type the channel name.
func confirmWipe(in io.Reader, w io.Writer) wipe.ConfirmFunc {
	return func(s wipe.Summary) (bool, error) {
		fmt.Fprintf(w, "%s %s product(s) in channel %s will be permanently deleted.\n",
			display.ColorWarning("WARNING:"), display.ColorCount(s.Count), display.ColorChannel(s.Channel))
		if s.Duplicates > 0 {
			fmt.Fprintf(w, "%s %d id(s) were returned more than once.\n", display.ColorWarning("Note:"), s.Duplicates)
		}
		return prompts.ConfirmWithInput(in, w, fmt.Sprintf("Type the channel name (%s) to confirm", s.Channel), s.Channel)
	}
}

func executeWipeProducts(ctx context.Context, deps wipe.Dependencies, params wipe.Params, opts wipeOptions, in io.Reader, w io.Writer) error {
	if !opts.Force && !params.DryRun {
		deps.Confirm = confirmWipe(in, w)
	}

	report, err := wipe.Run(ctx, deps, params)
	if err != nil {
		return err
	}

	if opts.JSON {
		return display.OutputJSON(w, report)
	}
	return outputWipeSummary(w, report, opts.Quiet)
}

func outputWipeSummary(w io.Writer, report *wipe.Report, quiet bool) error {
	channel := display.ColorChannel(report.Channel)

	switch {
	case report.DryRun:
		fmt.Fprintf(w, "%s Would delete %s product(s) from channel %s\n",
			display.ColorDryRun("[DRY RUN]"), display.ColorCount(len(report.Collected)), channel)
	case report.Cancelled:
		fmt.Fprintln(w, "Wipe cancelled.")
	case report.Skipped:
		if !quiet {
			fmt.Fprintf(w, "No products found in channel %s. Nothing to delete.\n", channel)
		}
	default:
		fmt.Fprintf(w, "%s Deleted %s of %s product(s) from channel %s\n",
			display.ColorSuccess("✓"), display.ColorCount(report.Deleted), display.ColorCount(len(report.Collected)), channel)
		for _, fe := range report.FieldErrors {
			fmt.Fprintf(w, "  %s %s\n", display.ColorError("✗"), display.FormatFieldError(fe.Field, fe.Message))
		}
	}
	return nil
}
