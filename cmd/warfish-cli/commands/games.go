package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the session user's finished games.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		profileID, err := client.ProfileID(cmd.Context())
		if err != nil {
			return err
		}
		games, err := client.FinishedGames(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"game id", "name"})
		for _, g := range games {
			t.AppendRow(table.Row{g.GameID, g.Name})
		}
		t.Render()

		fmt.Printf("%d finished games for profile %s\n", len(games), profileID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}
