package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wipeworks/saleorwipe/internal/config"
	"github.com/wipeworks/saleorwipe/internal/logging"
	"github.com/wipeworks/saleorwipe/internal/saleor"
	"github.com/wipeworks/saleorwipe/internal/wipe"
)

var errEmptyToken = errors.New("login returned an empty token")

// addConnectionFlags registers the flags that override connection settings.
// Flag names match the config keys.
func addConnectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(config.KeyEndpoint, "", "Saleor GraphQL endpoint, e.g. https://shop.example.com/graphql/")
	f.String(config.KeyEmail, "", "Staff account email")
	f.String(config.KeyPassword, "", "Staff account password (prefer "+config.EnvName(config.KeyPassword)+")")
	f.String(config.KeyChannel, config.DefaultChannel, "Sales channel slug")
	f.Int(config.KeyPageSize, config.DefaultPageSize, "Products requested per page (1-100)")
	f.Duration(config.KeyTimeout, config.DefaultTimeout, "Timeout of each HTTP request")
	f.Int(config.KeyMaxPages, 0, "Fail when the channel has more pages than this (0 = no limit)")
}

// session holds everything a command needs to talk to the API.
type session struct {
	settings config.Settings
	client   *saleor.Client
	runID    string
}

// newSession resolves and validates the settings and builds the operator
// logger. The returned func must be called when the command finishes.
func newSession(cmd *cobra.Command, errorLog string) (*session, func(), error) {
	ctx := cmd.Context()

	settings, err := loadConfig(ctx).Resolve(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, cleanup, err := logging.NewLogger(logging.Options{
		Out:      cmd.ErrOrStderr(),
		Verbose:  verbose,
		Quiet:    logging.IsQuiet(ctx),
		ErrorLog: errorLog,
	})
	if err != nil {
		return nil, nil, err
	}

	s := &session{
		settings: settings,
		runID:    uuid.NewString(),
	}
	opts := saleor.Options{
		Endpoint:    settings.Endpoint,
		HTTPTimeout: settings.Timeout,
		RunID:       s.runID,
	}
	if logging.IsLoggingEnabled(ctx) {
		opts.Transport = logging.NewLoggingRoundTripper(http.DefaultTransport, cmd.ErrOrStderr())
	}
	s.client, err = saleor.NewClient(opts)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	cmd.SetContext(logging.WithLogger(ctx, logger))
	logger.Debug("resolved settings",
		zap.String("run_id", s.runID),
		zap.String("endpoint", settings.Endpoint),
		zap.String("channel", settings.Channel),
		zap.Int("page_size", settings.PageSize),
		zap.Duration("timeout", settings.Timeout),
		zap.Int("max_pages", settings.MaxPages))

	return s, cleanup, nil
}

// connect returns the session client carrying token.
func (s *session) connect(token saleor.Token) (wipe.Client, error) {
	client := s.client.WithToken(token.Access)
	if !client.Authenticated() {
		return nil, errEmptyToken
	}
	return client, nil
}

// dependencies leaves Logger unset; the run picks it up from the context.
func (s *session) dependencies() wipe.Dependencies {
	return wipe.Dependencies{
		Login:   s.client.Login,
		Connect: s.connect,
	}
}

func (s *session) params(dryRun bool) wipe.Params {
	return wipe.Params{
		Email:    s.settings.Email,
		Password: s.settings.Password,
		Pages: wipe.PageOptions{
			PageSize: s.settings.PageSize,
			Channel:  s.settings.Channel,
			MaxPages: s.settings.MaxPages,
		},
		DryRun: dryRun,
		RunID:  s.runID,
	}
}
