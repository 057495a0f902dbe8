package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/md-connect/datican-repo/internal/relocate"
)

var (
	relocateFolder       string
	relocateDryRun       bool
	relocateVerify       bool
	relocateDeleteSource bool

	relocateCmd = &cobra.Command{
		Use:   "relocate <source-prefix>",
		Short: "Move previously uploaded objects into the current folder layout",
		Long: `Relocate lists every object under the given source prefix and moves each
one to <prefix>/<folder>/<file name> with a server-side copy. Objects whose
destination key already holds an object are skipped; with --verify the
destination is re-checked after each copy; with --delete-source the original
object is removed once the copy is in place. A failed move always keeps its
source object.`,
		Args: cobra.ExactArgs(1),
		RunE: runRelocate,
	}
)

func init() {
	relocateCmd.Flags().StringVar(&relocateFolder, "folder", "", "dataset folder under the datasets prefix")
	relocateCmd.Flags().BoolVar(&relocateDryRun, "dry-run", false, "plan moves without performing them")
	relocateCmd.Flags().BoolVar(&relocateVerify, "verify", false, "re-check destination existence after each copy")
	relocateCmd.Flags().BoolVar(&relocateDeleteSource, "delete-source", false, "remove source objects after successful copies")
}

func runRelocate(cmd *cobra.Command, args []string) error {
	sourcePrefix := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	folder := relocateFolder
	if folder == "" {
		folder = cfg.Folder
	}
	if folder == "" {
		return errors.New("a dataset folder is required: pass --folder or set B2_DATASET_FOLDER")
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	rel := relocate.New(client, relocate.Config{
		Bucket:       cfg.BucketName,
		SourcePrefix: sourcePrefix,
		Prefix:       cfg.DatasetsLocation,
		Folder:       folder,
		DryRun:       relocateDryRun,
		Verify:       relocateVerify,
		DeleteSource: relocateDeleteSource,
	}, log)

	moves, skipped, err := rel.Plan(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := rel.Run(cmd.Context(), moves, skipped)
	if err != nil {
		return err
	}

	if relocateDryRun {
		fmt.Printf("Dry run: %d objects would move, %d already in place\n", summary.Planned, summary.Skipped)
		return nil
	}

	fmt.Printf("Relocated %d of %d objects (%d skipped, %d failed) in %s\n",
		summary.Moved, summary.Planned, summary.Skipped, summary.Failed, summary.Duration.Round(time.Millisecond))

	if summary.Failed > 0 {
		return fmt.Errorf("%d objects failed to move; their sources were kept", summary.Failed)
	}

	return nil
}
