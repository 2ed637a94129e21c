package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/instafinder/backend/internal/domain"
	"github.com/instafinder/backend/internal/infrastructure/analysis"
	"github.com/instafinder/backend/internal/render"
	"github.com/instafinder/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	submitBaseURL string
	submitTimeout time.Duration
)

// errSubmissionFailed is returned after the failure banner has been printed
var errSubmissionFailed = errors.New("submission failed")

// submitCmd looks up a single URL and prints the result
var submitCmd = &cobra.Command{
	Use:   "submit [instagram-url]",
	Short: "Find products for one Instagram URL",
	Long: `Sends one Instagram post or reel URL to the analysis service and prints
the detected objects and their matching products.

Example:
  finder submit https://www.instagram.com/reel/DKTyUyGKeig/`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitBaseURL, "base-url", "", "Analysis service base URL (overrides analysis.base_url)")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 0, "Overall timeout for the lookup (0 = none)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	baseURL := cfg.Analysis.BaseURL
	if submitBaseURL != "" {
		baseURL = submitBaseURL
	}

	client := analysis.NewClient(baseURL, cfg.Analysis.EndpointPath, analysis.Options{
		Timeout:       cfg.Analysis.Timeout,
		RatePerSecond: cfg.Analysis.RatePerSecond,
		Logger:        logger,
	})

	opts := render.Options{FallbackImage: cfg.Render.FallbackImage}
	return submitOnce(cmd.Context(), cmd.OutOrStdout(), client, args[0], opts)
}

// submitOnce drives a single session through one submission and writes the
// rendered outcome to out
func submitOnce(ctx context.Context, out io.Writer, submitter domain.Submitter, rawURL string, opts render.Options) error {
	if submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, submitTimeout)
		defer cancel()
	}

	session := usecase.NewSession("cli", submitter, logger)
	defer session.Close()

	if err := session.Submit(ctx, rawURL); err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			view := render.Build(session.State(), opts).WithValidation(rawURL, render.InputTitle)
			if werr := render.Text(out, view); werr != nil {
				return werr
			}
		}
		return err
	}

	if err := session.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for analysis service: %w", err)
	}

	state := session.State()
	if err := render.Text(out, render.Build(state, opts)); err != nil {
		return err
	}

	if state.Status() == domain.StatusFailed {
		logger.Debug("lookup failed", zap.String("url", state.URL()), zap.String("message", state.Error()))
		return errSubmissionFailed
	}
	return nil
}
