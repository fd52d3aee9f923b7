package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsdefever/hfcs-fffit/internal/observability"
	"github.com/rsdefever/hfcs-fffit/pkg/sweep"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize workspace jobs from a sweep manifest",
	Long: `Initialize one job per state point in a YAML sweep manifest.

The manifest holds shared defaults plus a list of per-job overrides;
each expanded state point is hashed into a stable job ID. Initialization
is idempotent: state points whose jobs already exist are left untouched.

Example:
  fffit init --sweep sweep.yaml
  fffit init --sweep sweep.yaml --workspace runs/r125-iter1`,
	RunE: runInit,
}

var initSweepPath string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initSweepPath, "sweep", "s", "", "Path to sweep manifest (required)")
	_ = initCmd.MarkFlagRequired("sweep")
}

func runInit(cmd *cobra.Command, args []string) error {
	points, err := sweep.Load(initSweepPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load sweep manifest",
			zap.String("path", initSweepPath),
			zap.Error(err))
		return fmt.Errorf("load sweep manifest: %w", err)
	}

	store := openStore()
	out := cmd.OutOrStdout()
	created := 0
	for i := range points {
		job, isNew, err := store.Init(&points[i])
		if err != nil {
			return fmt.Errorf("init state point %d: %w", i+1, err)
		}
		state := "exists"
		if isNew {
			state = "created"
			created++
		}
		fmt.Fprintf(out, "%-8s %s  T=%.2fK P=%.2fbar N_liq=%d N_vap=%d\n",
			state, job.ID, job.SP.T, job.SP.P, job.SP.NLiq, job.SP.NVap)
	}

	observability.CLILogger.Info("Workspace initialized",
		zap.String("workspace", store.RootDir()),
		zap.Int("state_points", len(points)),
		zap.Int("created", created))
	fmt.Fprintf(out, "\n%d state points (%d new) in %s\n", len(points), created, store.RootDir())
	return nil
}
