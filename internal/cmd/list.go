package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/s3up/internal/observability"
	"github.com/3leaps/s3up/pkg/transfer"
)

var (
	listPrefix  string
	listMaxKeys int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the keys in the bucket",
	Long: `List every key in the bucket, following continuation tokens.

With --output jsonl each key is written to stdout as an s3up.object.v1
record, followed by an s3up.summary.v1 record.`,
	// A trailing filename is accepted and ignored.
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only list keys with this prefix")
	listCmd.Flags().IntVar(&listMaxKeys, "max-keys", 0, "Keys per page (1-1000, default 1000)")
}

func runList(cmd *cobra.Command, args []string) error {
	if listMaxKeys < 0 {
		return exitError(foundry.ExitInvalidArgument, "Invalid --max-keys value", errNegativeMaxKeys)
	}

	s, err := openSession(cmd, transfer.Config{Prefix: listPrefix, MaxKeys: listMaxKeys})
	if err != nil {
		return err
	}
	defer s.Close()

	sum, err := s.svc.List(cmd.Context())
	if err != nil {
		s.reportFailure("", err)
		return classify("List", err, foundry.ExitFileWriteError)
	}

	observability.CLILogger.Debug("List complete",
		zap.Int64("objects", sum.Objects),
		zap.Int64("bytes", sum.Bytes),
		zap.Int("pages", sum.Pages))
	return nil
}
