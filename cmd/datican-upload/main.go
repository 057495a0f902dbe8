// Command datican-upload publishes DATICAN dataset archives to the B2
// bucket backing the repository and maintains the bucket's folder layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/md-connect/datican-repo/b2"
	"github.com/md-connect/datican-repo/internal/config"
)

var (
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "datican-upload",
		Short: "Dataset archive publishing tool for the DATICAN repository",
		Long: `datican-upload transfers dataset archives to the B2 bucket backing the
DATICAN repository. Uploads are reconciled against the bucket's current
contents: an archive that already exists at its destination key is skipped
unless --force is given, so re-running an upload never silently replaces
published data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to an optional YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(relocateCmd)
	rootCmd.AddCommand(existsCmd)
}

// newLogger builds the process logger. Diagnostics go to stderr; result
// lines for the user stay on stdout.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadConfig resolves and validates the tool configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the B2 client from the resolved configuration.
func newClient(cfg *config.Config) (*b2.Client, error) {
	return b2.New(
		b2.WithRegion(cfg.Region),
		b2.WithEndpoint(cfg.Endpoint),
		b2.WithCredentials(cfg.KeyID, cfg.Key),
		b2.WithConcurrency(cfg.UploadThreads),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
