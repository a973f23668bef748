package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var flagHistoryOutput string

var historyCmd = &cobra.Command{
	Use:   "history <game id>",
	Short: "Fetch and decode a game's full move log.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("game id must be an integer: %w", err)
		}

		client := newClient()
		moves, err := client.History(cmd.Context(), gameID)
		if err != nil {
			return err
		}

		serialized, err := json.Marshal(moves)
		if err != nil {
			return err
		}
		err = os.WriteFile(flagHistoryOutput, serialized, 0o644)
		if err != nil {
			return err
		}

		fmt.Printf("game %d: %d moves, wrote %s\n", gameID, len(moves), flagHistoryOutput)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistoryOutput, "output", "o", "history.json", "output file")
	rootCmd.AddCommand(historyCmd)
}
