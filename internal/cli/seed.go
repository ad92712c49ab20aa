package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/api"
	"github.com/matzehuels/corkboard/pkg/board"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/store"
)

type seedOpts struct {
	count  int
	pinned int
	file   string
}

// seedCommand adds notes to a board. Generated notes have no position yet;
// the first load places them.
func (c *CLI) seedCommand() *cobra.Command {
	opts := seedOpts{count: 12}

	cmd := &cobra.Command{
		Use:   "seed <board>",
		Short: "Add notes to a board",
		Long: `Add generated notes to a board, or import items from a JSON file.

The file holds either an array of items or {"items": [...]}, as returned by
GET /boards/{board}/items.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID := args[0]
			if err := corkerrors.ValidateBoardID(boardID); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				existing, err := st.ListItems(cmd.Context(), boardID)
				if err != nil {
					return err
				}

				var items []board.Item
				if opts.file != "" {
					items, err = readItems(opts.file)
					if err != nil {
						return err
					}
				} else {
					items = generateItems(nextID(existing), opts.count, opts.pinned)
				}

				if err := st.PutItems(cmd.Context(), boardID, items); err != nil {
					return err
				}
				printSuccess("Seeded %s notes on %s",
					StyleNumber.Render(fmt.Sprint(len(items))), StyleValue.Render(boardID))
				printDetail("%d notes on the board", len(existing)+len(items))
				printNextStep("Place them", "corkboard place "+boardID)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of notes to generate")
	cmd.Flags().IntVar(&opts.pinned, "pinned", 0, "pin the first N generated notes")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "import items from a JSON file instead")

	return cmd
}

func nextID(items []board.Item) int64 {
	var id int64
	for _, it := range items {
		id = max(id, it.ID)
	}
	return id + 1
}

// generateItems returns count notes with ids from first, cycling through the
// note colors.
func generateItems(first int64, count, pinned int) []board.Item {
	items := make([]board.Item, count)
	for i := range items {
		id := first + int64(i)
		payload, _ := json.Marshal(map[string]string{"title": fmt.Sprintf("Note %d", id)})
		items[i] = board.Item{
			ID:      id,
			Color:   noteColors[i%len(noteColors)],
			Pinned:  i < pinned,
			Payload: payload,
		}
	}
	return items
}

func readItems(path string) ([]board.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []board.Item
	if err := json.Unmarshal(data, &items); err != nil {
		var req api.PutItemsRequest
		if err2 := json.Unmarshal(data, &req); err2 != nil {
			return nil, corkerrors.Wrap(corkerrors.ErrCodeInvalidFormat, err, "parse %s", path)
		}
		items = req.Items
	}
	for _, it := range items {
		if err := corkerrors.ValidateCoordinates(it.Position.Top, it.Position.Left); err != nil {
			return nil, fmt.Errorf("item %d: %w", it.ID, err)
		}
	}
	return items, nil
}
