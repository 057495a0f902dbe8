package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	existsFolder string

	existsCmd = &cobra.Command{
		Use:   "exists <file-or-key>",
		Short: "Check whether an archive is already published",
		Long: `Exists probes the bucket for an object at the key a file would upload to.
The argument is either a local file name (its base name is combined with the
configured prefix and folder) or a full object key containing slashes, which
is probed as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: runExists,
	}
)

func init() {
	existsCmd.Flags().StringVar(&existsFolder, "folder", "", "dataset folder under the datasets prefix")
}

func runExists(cmd *cobra.Command, args []string) error {
	arg := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	key := arg
	if !strings.Contains(arg, "/") {
		folder := existsFolder
		if folder == "" {
			folder = cfg.Folder
		}
		if folder == "" {
			return errors.New("a dataset folder is required: pass --folder or set B2_DATASET_FOLDER")
		}
		key = cfg.DatasetsLocation + "/" + folder + "/" + filepath.Base(arg)
	}

	present, err := client.Exists(cmd.Context(), cfg.BucketName, key)
	if err != nil {
		return err
	}

	if present {
		fmt.Printf("Present: b2://%s/%s\n", cfg.BucketName, key)
	} else {
		fmt.Printf("Absent: b2://%s/%s\n", cfg.BucketName, key)
	}

	return nil
}
