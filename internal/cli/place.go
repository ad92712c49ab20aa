package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/store"
)

// placeCommand loads a board once, which reconciles every stored position
// against the canvas, and waits for the corrections to be written back.
func (c *CLI) placeCommand() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "place <board>",
		Short: "Give unplaced and out-of-bounds notes a position",
		Long: `Load a board and write corrected positions back to the store.

Notes without a position, inside the top-left dead zone or outside the canvas
get a fresh spot on a jittered grid. Valid positions are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				c.config().Board.Seed = seed
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				return c.runPlace(cmd, args[0], st)
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "placement seed for reproducible positions")

	return cmd
}

func (c *CLI) runPlace(cmd *cobra.Command, boardID string, st store.Store) error {
	prog := newProgress(c.Logger)
	queue := c.newQueue(st)

	var corrected int
	counting := board.WriterFunc(func(u board.PositionUpdate) {
		if u.Origin == board.OriginReconcile {
			corrected++
		}
		queue.Submit(u)
	})

	s, err := c.newSession(boardID, st, counting, nil)
	if err != nil {
		return err
	}
	loadErr := s.Load(cmd.Context())
	stats := c.drain(queue)
	if loadErr != nil {
		return loadErr
	}
	prog.done("board placed", "board", boardID, "corrected", corrected)

	dims := s.Dimensions()
	printSuccess("Placed %s", StyleValue.Render(boardID))
	fmt.Fprintln(stdout, boardStats(len(s.Items()), corrected, len(s.Stacks())))
	printKeyValue("canvas", fmt.Sprintf("%.0f × %.0f px", dims.Width, dims.Height))
	printKeyValue("written", fmt.Sprint(stats.Written))
	if lost := stats.Failed + stats.Dropped; lost > 0 {
		printWarning("%d corrections were not stored; they are recomputed on the next load", lost)
	}
	printNextStep("Render it", "corkboard render "+boardID)
	return nil
}
