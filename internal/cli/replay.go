package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/minuet-ml/minuet/internal/infer"
	"github.com/minuet-ml/minuet/internal/model"
	"github.com/minuet-ml/minuet/internal/store"
)

// Objectives closer than this are considered identical. Replay is exact in
// principle; the tolerance only absorbs float formatting on the way through
// the store.
const replayTolerance = 1e-9

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// ReplayOutput is the replay command's result payload.
type ReplayOutput struct {
	RunID     string  `json:"run_id"`
	Model     string  `json:"model"`
	Stored    float64 `json:"stored_objective"`
	Replayed  float64 `json:"replayed_objective"`
	Matched   bool    `json:"matched"`
	Tolerance float64 `json:"tolerance"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <model.yaml>",
		Short: "Replay a stored run and verify its objective",
		Long: `Re-execute a model with every unobserved site forced to the values
recorded in a stored trace, then compare the recomputed objective to the
stored one. A mismatch means the model file no longer matches the run.

Exit codes: 0 match, 1 mismatch, 2 command error.

Example:
  minuet replay --db ./runs.db --run 2f9c... ./models/hmm.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to replay (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func replayRun(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	f, err := model.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load model", err)
	}
	m, err := f.Build()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build model", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	run, sites, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read run %q", opts.RunID), err)
	}
	records, err := store.Records(sites)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to rebuild trace", err)
	}

	res, err := infer.Replay(m, records, infer.Config{Particles: run.Particles, Seed: run.Seed})
	if err != nil {
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	out := ReplayOutput{
		RunID:     run.ID,
		Model:     run.Model,
		Stored:    run.Objective,
		Replayed:  res.LogMarginal,
		Matched:   math.Abs(res.LogMarginal-run.Objective) <= replayTolerance,
		Tolerance: replayTolerance,
	}
	slog.Info("replay finished",
		"run_id", out.RunID,
		"stored", out.Stored,
		"replayed", out.Replayed,
		"matched", out.Matched,
	)

	if opts.Format == "json" {
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run:      %s (%s)\n", out.RunID, out.Model)
		fmt.Fprintf(w, "Stored:   %.12f\n", out.Stored)
		fmt.Fprintf(w, "Replayed: %.12f\n", out.Replayed)
		if out.Matched {
			fmt.Fprintln(w, "Result:   MATCH")
		} else {
			fmt.Fprintln(w, "Result:   MISMATCH")
		}
	}

	if !out.Matched {
		return NewExitError(ExitFailure, "replayed objective does not match stored objective")
	}
	return nil
}
