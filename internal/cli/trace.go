package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minuet-ml/minuet/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID     string  `json:"run_id"`
	Model     string  `json:"model"`
	Seed      uint64  `json:"seed"`
	Particles int     `json:"particles"`
	Objective float64 `json:"objective"`
	CreatedAt string  `json:"created_at"`
}

// SiteSummary is one row of a trace dump.
type SiteSummary struct {
	Position   int      `json:"position"`
	Name       string   `json:"name"`
	Observed   bool     `json:"observed"`
	Enumerated bool     `json:"enumerated"`
	Dims       []string `json:"dims"`
	Sizes      []int    `json:"sizes"`
}

// TraceOutput is the trace command's result payload for a single run.
type TraceOutput struct {
	Run   RunSummary    `json:"run"`
	Sites []SiteSummary `json:"sites"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "List stored runs or dump one trace",
		Long: `Inspect the trace store.

Without arguments, lists stored runs newest first. With a run ID, dumps
that run's sites in execution order: name, flags, axes, and sizes.

Examples:
  minuet trace --db ./runs.db
  minuet trace --db ./runs.db 2f9c...
  minuet trace --db ./runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(opts.Verbose)
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if len(args) == 1 {
				return showRun(ctx, opts, st, args[0], cmd)
			}
			return listRuns(ctx, opts, st, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")

	return cmd
}

func listRuns(ctx context.Context, opts *TraceOptions, st *store.Store, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = runSummary(r)
	}
	if opts.Format == "json" {
		return writeJSON(cmd, summaries)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  %-12s  seed=%-6d particles=%-4d objective=%.6f  %s\n",
			s.RunID, s.Model, s.Seed, s.Particles, s.Objective, s.CreatedAt)
	}
	return nil
}

func showRun(ctx context.Context, opts *TraceOptions, st *store.Store, id string, cmd *cobra.Command) error {
	run, sites, err := st.ReadRun(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read run %q", id), err)
	}

	out := TraceOutput{Run: runSummary(run), Sites: make([]SiteSummary, len(sites))}
	for i, s := range sites {
		out.Sites[i] = SiteSummary{
			Position:   s.Position,
			Name:       s.Name,
			Observed:   s.Observed,
			Enumerated: s.Enumerated,
			Dims:       s.Dims,
			Sizes:      s.Sizes,
		}
	}
	if opts.Format == "json" {
		return writeJSON(cmd, out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run: %s\n", out.Run.RunID)
	fmt.Fprintf(w, "Model: %s (seed=%d particles=%d)\n", out.Run.Model, out.Run.Seed, out.Run.Particles)
	fmt.Fprintf(w, "Objective: %.6f\n", out.Run.Objective)
	fmt.Fprintln(w)
	for _, s := range out.Sites {
		fmt.Fprintf(w, "  [%d] %-8s %s %s\n", s.Position, s.Name, siteFlags(s), siteShape(s))
	}
	return nil
}

func runSummary(r store.Run) RunSummary {
	return RunSummary{
		RunID:     r.ID,
		Model:     r.Model,
		Seed:      r.Seed,
		Particles: r.Particles,
		Objective: r.Objective,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func siteFlags(s SiteSummary) string {
	switch {
	case s.Observed:
		return "observed  "
	case s.Enumerated:
		return "enumerated"
	default:
		return "sampled   "
	}
}

func siteShape(s SiteSummary) string {
	if len(s.Dims) == 0 {
		return "scalar"
	}
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		parts[i] = fmt.Sprintf("%s:%d", d, s.Sizes[i])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
