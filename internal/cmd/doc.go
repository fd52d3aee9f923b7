package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Print a job's document of derived quantities",
	Long: `Print the derived-quantity document of one job as JSON.

The document accumulates the box sizes computed before simulation and,
once production finishes, the seven aggregated properties with their
block-averaged uncertainties.

Example:
  fffit doc --job 9bb8d0cbd496d7832a007dd9e84062e0`,
	RunE: runDoc,
}

var docJobID string

func init() {
	rootCmd.AddCommand(docCmd)

	docCmd.Flags().StringVarP(&docJobID, "job", "j", "", "Job ID (required)")
	_ = docCmd.MarkFlagRequired("job")
}

func runDoc(cmd *cobra.Command, args []string) error {
	store := openStore()

	job, err := store.Open(docJobID)
	if err != nil {
		return fmt.Errorf("open job %s: %w", docJobID, err)
	}

	b, err := json.MarshalIndent(job.Doc(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
