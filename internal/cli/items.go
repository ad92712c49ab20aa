package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/api"
	"github.com/matzehuels/corkboard/pkg/board"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/render"
	"github.com/matzehuels/corkboard/pkg/store"
)

// itemsCommand groups the item management subcommands.
func (c *CLI) itemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List, move and delete the notes of a board",
	}

	cmd.AddCommand(c.itemsListCommand())
	cmd.AddCommand(c.itemsMoveCommand())
	cmd.AddCommand(c.itemsDeleteCommand())

	return cmd
}

func (c *CLI) itemsListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list <board>",
		Aliases: []string{"ls"},
		Short:   "List the notes of a board with their stored positions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				items, err := st.ListItems(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(api.ItemsResponse{Board: args[0], Items: items})
				}
				if len(items) == 0 {
					printInfo("Board %s has no notes", StyleValue.Render(args[0]))
					return nil
				}
				fmt.Fprintln(stdout, itemsTable(items))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the items as JSON")

	return cmd
}

func (c *CLI) itemsMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <board> <id> <top> <left>",
		Short: "Store a new position for a note",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[1])
			if err != nil {
				return err
			}
			top, err1 := strconv.ParseFloat(args[2], 64)
			left, err2 := strconv.ParseFloat(args[3], 64)
			if err1 != nil || err2 != nil {
				return corkerrors.New(corkerrors.ErrCodeInvalidPosition, "top and left must be numbers")
			}
			if err := corkerrors.ValidateCoordinates(top, left); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				pos := board.Position{Top: top, Left: left}
				if err := st.UpdatePosition(cmd.Context(), args[0], id, pos); err != nil {
					return err
				}
				printSuccess("Moved note %d to (%g, %g)", id, top, left)
				return nil
			})
		},
	}
}

func (c *CLI) itemsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <board> <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[1])
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.DeleteItem(cmd.Context(), args[0], id); err != nil {
					return err
				}
				printSuccess("Deleted note %d", id)
				return nil
			})
		},
	}
}

// itemsTable renders items as a rounded lipgloss table.
func itemsTable(items []board.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		pin := ""
		if it.Pinned {
			pin = "●"
		}
		rows = append(rows, []string{
			strconv.FormatInt(it.ID, 10),
			strconv.FormatFloat(it.Position.Top, 'f', 1, 64),
			strconv.FormatFloat(it.Position.Left, 'f', 1, 64),
			it.Color,
			pin,
			render.Label(it),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Top", "Left", "Color", "Pin", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorRed)
			case col == 0 || col == 1 || col == 2:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		String()
}

func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, corkerrors.New(corkerrors.ErrCodeInvalidInput, "item id must be a positive integer, got %q", s)
	}
	return id, nil
}
