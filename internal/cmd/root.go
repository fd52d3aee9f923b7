// Package cmd implements the fffit command-line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rsdefever/hfcs-fffit/internal/observability"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
)

var rootCmd = &cobra.Command{
	Use:   "fffit",
	Short: "Molecular simulation workflow runner for force-field fitting",
	Long: `fffit drives vapor-liquid equilibrium simulation workflows across a
workspace of jobs. Each job is one thermodynamic state point paired with
one candidate force field; the workflow builds the force-field file,
sizes the simulation boxes, equilibrates a liquid box, runs a two-box
Gibbs-ensemble simulation, and aggregates the resulting properties with
block-averaged uncertainties.

Workflow state lives on disk, so any command can be re-run at any time:
completed work is detected from its outputs and skipped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		observability.InitCLILogger(
			viper.GetString("logging.level"),
			viper.GetBool("logging.json"))
		return nil
	},
}

var cfgFile string

// versionInfo holds build-time version metadata, injected via ldflags.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./fffit.yaml)")
	rootCmd.PersistentFlags().String("workspace", "", "Workspace directory holding job state")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")

	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// setDefaults establishes configuration defaults before any config file or
// environment values are applied.
func setDefaults() {
	viper.SetDefault("workspace", "workspace")
	viper.SetDefault("workers", 4)

	viper.SetDefault("engine.executable", "cassandra.exe")
	viper.SetDefault("engine.threads", 1)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)
}

func initConfig() error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fffit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("FFFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit --config that
		// cannot be read is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// openStore opens the configured workspace.
func openStore() *jobstore.Store {
	return jobstore.NewStore(viper.GetString("workspace"))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fffit %s (commit %s, built %s)\n",
			versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

// Execute runs the root command. Errors are returned to main for exit
// code handling rather than printed here.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
