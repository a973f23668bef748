package commands

import (
	"context"
	"fmt"
	"os"
	"warfish-archive/lib/warfish"

	"github.com/spf13/cobra"
)

var (
	flagSessid  string
	flagBaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "warfish-cli",
	Short: "warfish-cli scrapes warfish.net game snapshots and move histories.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSessid, "sessid", "", "SESSID cookie of an authenticated warfish session")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override the warfish base url")
}

func newClient() *warfish.Client {
	return warfish.NewClient(flagBaseURL, warfish.WithSessionID(flagSessid))
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
