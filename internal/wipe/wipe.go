package wipe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wipeworks/saleorwipe/internal/logging"
	"github.com/wipeworks/saleorwipe/internal/saleor"
)

// Authenticator exchanges credentials for a token.
type Authenticator func(ctx context.Context, email, password string) (saleor.Token, error)

// Client is what a run needs from an authenticated API connection.
type Client interface {
	Querier
	Mutator
}

// Summary is shown to the operator before anything is deleted.
type Summary struct {
	RunID      string
	Channel    string
	Count      int
	Pages      int
	Duplicates int
}

// ConfirmFunc decides whether the collected products may be deleted.
type ConfirmFunc func(Summary) (bool, error)

// Dependencies are the collaborators of a run. Confirm is optional. A nil
// Logger falls back to the one stored in the context.
type Dependencies struct {
	Login   Authenticator
	Connect func(token saleor.Token) (Client, error)
	Confirm ConfirmFunc
	Logger  *zap.Logger
}

// Params describe one run.
type Params struct {
	Email    string
	Password string
	Pages    PageOptions
	DryRun   bool
	// RunID is generated when empty.
	RunID string
}

// Report is the outcome of a run.
type Report struct {
	RunID       string       `json:"runId"`
	Channel     string       `json:"channel"`
	Pages       int          `json:"pages"`
	Collected   []string     `json:"collected"`
	Duplicates  int          `json:"duplicates"`
	Deleted     int          `json:"deleted"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
	DryRun      bool         `json:"dryRun,omitempty"`
	Cancelled   bool         `json:"cancelled,omitempty"`
	Skipped     bool         `json:"skipped,omitempty"`
}

// Run logs in, collects every product id of the channel and removes them
// with one bulk delete. Per-field delete errors are logged and reported but
// do not fail the run.
func Run(ctx context.Context, deps Dependencies, params Params) (*Report, error) {
	if deps.Login == nil || deps.Connect == nil {
		return nil, fmt.Errorf("wipe: Login and Connect are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	if params.RunID == "" {
		params.RunID = uuid.NewString()
	}
	pages := params.Pages.withDefaults()

	report := &Report{
		RunID:   params.RunID,
		Channel: pages.Channel,
		DryRun:  params.DryRun,
	}
	logger = logger.With(zap.String("run_id", report.RunID), zap.String("channel", report.Channel))

	logger.Debug("logging in", zap.String("email", params.Email))
	token, err := deps.Login(ctx, params.Email, params.Password)
	if err != nil {
		return nil, err
	}
	logger.Info("logged in")

	client, err := deps.Connect(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	progress := func(p Page) {
		logger.Debug("fetched page",
			zap.Int("page", p.Number),
			zap.Int("size", p.Size),
			zap.Int("total", p.Total),
			zap.Bool("has_next_page", p.HasNextPage))
	}

	collection, err := CollectProductIDs(ctx, client, pages, progress)
	if err != nil {
		return nil, err
	}
	report.Pages = collection.Pages
	report.Collected = collection.IDs
	report.Duplicates = collection.Duplicates
	logger.Info("collected products", zap.Int("count", len(collection.IDs)), zap.Int("pages", collection.Pages))
	if collection.Duplicates > 0 {
		logger.Warn("server returned duplicate product ids", zap.Int("duplicates", collection.Duplicates))
	}

	if params.DryRun {
		logger.Info("dry run, nothing deleted")
		return report, nil
	}
	if len(collection.IDs) == 0 {
		report.Skipped = true
		logger.Info("no products to delete")
		return report, nil
	}

	if deps.Confirm != nil {
		ok, err := deps.Confirm(Summary{
			RunID:      report.RunID,
			Channel:    report.Channel,
			Count:      len(collection.IDs),
			Pages:      collection.Pages,
			Duplicates: collection.Duplicates,
		})
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			report.Cancelled = true
			logger.Info("wipe cancelled")
			return report, nil
		}
	}

	result, err := BulkDelete(ctx, client, collection.IDs)
	if err != nil {
		return nil, err
	}
	report.Deleted = result.Count
	report.FieldErrors = result.Errors
	report.Skipped = result.Skipped

	for _, fe := range result.Errors {
		logger.Warn("product not deleted", zap.String("field", fe.Field), zap.String("reason", fe.Message))
	}
	logger.Info("bulk delete finished",
		zap.Int("requested", result.Requested),
		zap.Int("deleted", result.Count),
		zap.Int("errors", len(result.Errors)))

	return report, nil
}
