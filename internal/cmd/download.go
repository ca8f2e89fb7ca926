package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/s3up/internal/observability"
	"github.com/3leaps/s3up/pkg/transfer"
)

var downloadCmd = &cobra.Command{
	Use:   "download <file_name>",
	Short: "Download an object into the working directory",
	Long: `Download the object with the given key into a local file of the same name.

A failed download removes the partially written file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "" {
		observability.CLILogger.Error("Please provide the file name to download.")
		return loggedExit(foundry.ExitInvalidArgument, "Missing file name", errMissingFilename)
	}
	name := args[0]

	s, err := openSession(cmd, transfer.Config{})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.Download(cmd.Context(), name); err != nil {
		s.reportFailure(name, err)
		return classify("Download", err, foundry.ExitFileWriteError)
	}
	return nil
}
