package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	flagMinUnits           int
	flagTerritoriesPerUnit int
	flagOutput             string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <game id>",
	Short: "Fetch a game's board/rule/player snapshot and write it as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("game id must be an integer: %w", err)
		}

		client := newClient()
		data, err := client.GameData(cmd.Context(), gameID, flagMinUnits, flagTerritoriesPerUnit)
		if err != nil {
			return err
		}

		serialized, err := json.Marshal(data)
		if err != nil {
			return err
		}
		err = os.WriteFile(flagOutput, serialized, 0o644)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"seat", "name", "color", "alive", "turn", "reserve", "cards"})
		for _, p := range data.Players {
			cards := "-"
			if p.NumberOfCards != nil {
				cards = fmt.Sprint(*p.NumberOfCards)
			}
			t.AppendRow(table.Row{p.SeatID, p.Name, p.Color.Name, p.IsAlive, p.IsTurn, p.ReserveUnits, cards})
		}
		t.Render()

		fmt.Printf(
			"game %d: %d territories, %d continents, rules: %s / %s\nwrote %s\n",
			gameID,
			len(data.Map.Territories),
			len(data.Map.Continents),
			data.Rules.Dice,
			data.Rules.Fog,
			flagOutput,
		)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().IntVar(&flagMinUnits, "min-units", 3, "minimum units placed per turn")
	snapshotCmd.Flags().IntVar(&flagTerritoriesPerUnit, "territories-per-unit", 3, "owned territories per placeable unit")
	snapshotCmd.Flags().StringVarP(&flagOutput, "output", "o", "data.json", "output file")
	rootCmd.AddCommand(snapshotCmd)
}
