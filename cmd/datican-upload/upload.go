package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/md-connect/datican-repo/internal/reconcile"
)

var (
	uploadForce    bool
	uploadFolder   string
	uploadProgress bool

	uploadCmd = &cobra.Command{
		Use:   "upload <local-file>",
		Short: "Upload a dataset archive unless it is already published",
		Long: `Upload transfers a local archive to <prefix>/<folder>/<file name> in the
configured bucket. If an object already exists at that key the transfer is
skipped; pass --force to overwrite it. On success the remote path and a
time-limited download URL are printed.`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}
)

func init() {
	uploadCmd.Flags().BoolVar(&uploadForce, "force", false, "overwrite an existing object at the destination key")
	uploadCmd.Flags().StringVar(&uploadFolder, "folder", "", "dataset folder under the datasets prefix")
	uploadCmd.Flags().BoolVar(&uploadProgress, "progress", true, "show a transfer progress bar")
}

func runUpload(cmd *cobra.Command, args []string) error {
	localPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	folder := uploadFolder
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

	store := uploadStore{Client: client}
	if uploadProgress {
		store.tracker = newProgressBar()
	}

	rec := reconcile.New(store, reconcile.Config{
		Bucket:      cfg.BucketName,
		Prefix:      cfg.DatasetsLocation,
		Folder:      folder,
		URLValidity: cfg.URLValidity,
	})

	result, err := rec.Reconcile(cmd.Context(), localPath, uploadForce)
	if err != nil {
		return err
	}

	switch result.Status {
	case reconcile.StatusSkipped:
		fmt.Printf("Skipped: %s already exists in bucket %s (use --force to overwrite)\n",
			result.Key, cfg.BucketName)
	case reconcile.StatusUploaded:
		fmt.Printf("Uploaded %s (%d bytes) in %s\n", result.Key, result.Size, result.Duration.Round(time.Millisecond))
		fmt.Printf("Remote path: b2://%s/%s\n", cfg.BucketName, result.Key)
		fmt.Printf("Download URL (valid %s): %s\n", cfg.URLValidity, result.SignedURL)
	}

	return nil
}
