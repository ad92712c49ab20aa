package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/cache"
	"github.com/matzehuels/corkboard/pkg/render"
	"github.com/matzehuels/corkboard/pkg/store"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string  // output file, "-" for stdout
	format  string  // dot, svg, png or pdf
	scale   float64 // png zoom
	stacks  bool    // draw stack labels
	noCache bool
}

// renderCommand draws a board as it would look after loading: reconciled
// positions, saved stacks and every note in paint order.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(render.FormatSVG), scale: 1, stacks: true}

	cmd := &cobra.Command{
		Use:   "render <board>",
		Short: "Render a board to DOT, SVG, PNG or PDF",
		Long: `Render a board snapshot with Graphviz (neato, pinned node positions).

Positions are reconciled in memory only; run "corkboard place" to store them.
PNG and PDF output needs rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				return c.runRender(cmd, args[0], st, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <board>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png, pdf")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "zoom factor for png output")
	cmd.Flags().BoolVar(&opts.stacks, "stacks", opts.stacks, "draw stack names")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, boardID string, st store.Store, opts renderOpts) error {
	format, err := render.ParseFormat(strings.ToLower(opts.format))
	if err != nil {
		return err
	}

	s, err := c.newSession(boardID, st, nil, nil)
	if err != nil {
		return err
	}
	if err := s.Load(cmd.Context()); err != nil {
		return err
	}

	cc, err := c.newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()
	keyer := cache.NewScopedKeyer(nil, c.config().Store.Driver+":")
	renderer := render.NewRenderer(cc, keyer, c.config().Cache.TTL, c.Logger)

	prog := newProgress(c.Logger)
	spin := newSpinner(cmd.Context(), os.Stderr, "Rendering "+boardID)
	spin.Start()
	data, err := renderer.Render(cmd.Context(), s.Snapshot(), render.Options{
		Format: format,
		Scale:  opts.scale,
		Stacks: opts.stacks,
	})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("board rendered", "board", boardID, "format", format, "bytes", len(data))

	out := opts.output
	if out == "" {
		out = boardID + "." + string(format)
	}
	if out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printSuccess("Rendered %s", StyleValue.Render(boardID))
	fmt.Fprintln(stdout, boardStats(len(s.Items()), 0, len(s.Stacks())))
	printFile(out)
	return nil
}
