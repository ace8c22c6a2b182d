package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crosspad/internal/puzzle"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <puzzle.json>",
		Short: "Validate a puzzle JSON file without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var p puzzle.Puzzle
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("invalid puzzle: %w", err)
			}

			across, down := 0, 0
			for _, c := range p.Clues {
				if c.Dir == puzzle.Across {
					across++
				} else {
					down++
				}
			}
			fmt.Printf("OK: %dx%d grid, %d playable squares, %d across, %d down\n",
				p.Size, p.Size, len(p.Grid), across, down)
			return nil
		},
	}
}
