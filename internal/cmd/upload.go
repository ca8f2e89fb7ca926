package cmd

import (
	"path/filepath"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/s3up/internal/observability"
	"github.com/3leaps/s3up/pkg/transfer"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file_path>",
	Short: "Upload a local file to the bucket",
	Long: `Upload a local file to the bucket under its base name.

The file must exist, be non-empty, and have one of the extensions
.txt, .pdf, .jpg or .png (case-insensitive).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "" {
		observability.CLILogger.Error("Please provide the file path to upload.")
		return loggedExit(foundry.ExitInvalidArgument, "Missing file path", errMissingFilename)
	}
	path := args[0]

	s, err := openSession(cmd, transfer.Config{})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.Upload(cmd.Context(), path); err != nil {
		s.reportFailure(filepath.Base(path), err)
		return classify("Upload", err, foundry.ExitFileReadError)
	}
	return nil
}
