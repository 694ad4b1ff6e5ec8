package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wipeworks/saleorwipe/internal/display"
	"github.com/wipeworks/saleorwipe/internal/logging"
	"github.com/wipeworks/saleorwipe/internal/wipe"
)

// newListCmd creates the list parent command with its subcommands.
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources without changing them",
		Long: `List resources from a Saleor store.

Available subcommands:
  products    List the ids of every product in a sales channel`,
	}

	cmd.AddCommand(newListProductsCmd())

	return cmd
}

// newListProductsCmd creates the list products subcommand.
func newListProductsCmd() *cobra.Command {
	var (
		jsonOutput   bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the products a wipe would remove",
		Long: `Page through every product of the sales channel and print their ids.

This runs the same collection as 'saleorwipe wipe products' but never deletes.

Examples:
  # List products of the configured channel
  saleorwipe list products

  # List products of another channel in JSON format
  saleorwipe list products --channel default-channel --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Handle output format flag (-o)
			if outputFormat != "" {
				switch outputFormat {
				case "json":
					jsonOutput = true
				case "table":
					jsonOutput = false
				default:
					cmd.SilenceUsage = true
					return fmt.Errorf("invalid output format %q. Supported formats: json, table", outputFormat)
				}
			}

			s, cleanup, err := newSession(cmd, "")
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			defer cleanup()

			cmd.SilenceUsage = true
			return executeListProducts(cmd.Context(), s.dependencies(), s.params(true), listOutput{
				JSON:  jsonOutput,
				Quiet: logging.IsQuiet(cmd.Context()),
			}, cmd.OutOrStdout())
		},
	}

	addConnectionFlags(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format (json, table)")

	return cmd
}

type listOutput struct {
	JSON  bool
	Quiet bool
}

// productList is the JSON shape of list products.
type productList struct {
	Channel    string   `json:"channel"`
	Pages      int      `json:"pages"`
	Count      int      `json:"count"`
	Duplicates int      `json:"duplicates"`
	IDs        []string `json:"ids"`
}

func executeListProducts(ctx context.Context, deps wipe.Dependencies, params wipe.Params, out listOutput, w io.Writer) error {
	params.DryRun = true

	report, err := wipe.Run(ctx, deps, params)
	if err != nil {
		return err
	}

	if out.JSON {
		ids := report.Collected
		if ids == nil {
			ids = []string{}
		}
		return display.OutputJSON(w, productList{
			Channel:    report.Channel,
			Pages:      report.Pages,
			Count:      len(ids),
			Duplicates: report.Duplicates,
			IDs:        ids,
		})
	}
	return outputProductsTable(w, report, out.Quiet)
}

// outputProductsTable prints one product per line. If quiet is true,
// headers and summaries are suppressed.
func outputProductsTable(w io.Writer, report *wipe.Report, quiet bool) error {
	if len(report.Collected) == 0 {
		if !quiet {
			fmt.Fprintf(w, "No products found in channel %s\n", display.ColorChannel(report.Channel))
		}
		return nil
	}

	if quiet {
		for _, id := range report.Collected {
			fmt.Fprintln(w, id)
		}
		return nil
	}

	fmt.Fprintf(w, "Products in channel %s:\n\n", display.ColorChannel(report.Channel))

	maxIDLen := len("PRODUCT ID")
	for _, id := range report.Collected {
		if len(id) > maxIDLen {
			maxIDLen = len(id)
		}
	}

	fmt.Fprintf(w, "  %s  %s\n",
		display.ColorHeader(fmt.Sprintf("%-*s", maxIDLen, "PRODUCT ID")),
		display.ColorHeader("DECODED"))
	fmt.Fprintf(w, "  %s  %s\n",
		display.ColorSeparator(strings.Repeat("-", maxIDLen)),
		display.ColorSeparator(strings.Repeat("-", len("DECODED"))))

	for _, id := range report.Collected {
		fmt.Fprintf(w, "  %s  %s\n",
			display.ColorID(fmt.Sprintf("%-*s", maxIDLen, id)),
			display.DecodeID(id))
	}

	productWord := "products"
	if len(report.Collected) == 1 {
		productWord = "product"
	}
	fmt.Fprintf(w, "\nTotal: %s %s in %s page(s).\n",
		display.ColorCount(len(report.Collected)), productWord, display.ColorCount(report.Pages))
	if report.Duplicates > 0 {
		fmt.Fprintln(w, display.ColorWarning(fmt.Sprintf("Warning: %d id(s) were returned more than once.", report.Duplicates)))
	}

	return nil
}
