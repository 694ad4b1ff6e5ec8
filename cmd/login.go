package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wipeworks/saleorwipe/internal/display"
	"github.com/wipeworks/saleorwipe/internal/logging"
	"github.com/wipeworks/saleorwipe/internal/saleor"
)

func newLoginCmd() *cobra.Command {
	var printToken bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check the configured credentials",
		Long: `Log in to the Saleor API with the configured staff account.

Nothing is stored; the token is only used to confirm the credentials work.

Examples:
  # Check credentials from the config file or environment
  saleorwipe login

  # Check explicit credentials and print the access token
  saleorwipe login --endpoint https://shop.example.com/graphql/ --email admin@example.com --print-token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := newSession(cmd, "")
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			defer cleanup()

			cmd.SilenceUsage = true
			return executeLogin(cmd.Context(), s.client.Login, loginParams{
				Endpoint:   s.client.Endpoint(),
				Email:      s.settings.Email,
				Password:   s.settings.Password,
				PrintToken: printToken,
				Quiet:      logging.IsQuiet(cmd.Context()),
			}, cmd.OutOrStdout())
		},
	}

	addConnectionFlags(cmd)
	cmd.Flags().BoolVar(&printToken, "print-token", false, "Print the access token to stdout")

	return cmd
}

type loginParams struct {
	Endpoint   string
	Email      string
	Password   string
	PrintToken bool
	Quiet      bool
}

type loginFunc func(ctx context.Context, email, password string) (saleor.Token, error)

func executeLogin(ctx context.Context, login loginFunc, params loginParams, w io.Writer) error {
	token, err := login(ctx, params.Email, params.Password)
	if err != nil {
		return err
	}

	if params.PrintToken {
		fmt.Fprintln(w, token.Access)
		return nil
	}
	if !params.Quiet {
		fmt.Fprintf(w, "%s Logged in to %s as %s\n", display.ColorSuccess("✓"), params.Endpoint, params.Email)
	}
	return nil
}
