package render

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/cache"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", corkerrors.New(corkerrors.ErrCodeInvalidFormat, "unknown format %q (want dot, svg, png or pdf)", s)
}

// Options selects what [Renderer.Render] produces.
type Options struct {
	Format Format
	// Scale is the PNG zoom. Zero means 1.
	Scale float64
	// Stacks draws stack labels.
	Stacks bool
}

// Renderer renders snapshots through a cache.
type Renderer struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewRenderer returns a renderer. A nil cache disables caching and a nil keyer
// uses [cache.DefaultKeyer].
func NewRenderer(c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// Render returns the snapshot in opts.Format. Cache failures are logged and
// never fail the render.
func (r *Renderer) Render(ctx context.Context, s Snapshot, opts Options) ([]byte, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}

	key := r.keyer.RenderKey(s.Board, s.Hash(), cache.RenderKeyOpts{
		Format: string(opts.Format),
		Scale:  opts.Scale,
		Stacks: opts.Stacks,
	})
	if data, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("render cache read failed", "err", err)
	} else if ok {
		r.logger.Debug("render cache hit", "board", s.Board, "format", opts.Format)
		return data, nil
	}

	start := time.Now()
	data, err := r.render(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("rendered board", "board", s.Board, "format", opts.Format,
		"items", len(s.Items), "bytes", len(data), "duration", time.Since(start))

	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("render cache write failed", "err", err)
	}
	return data, nil
}

func (r *Renderer) render(ctx context.Context, s Snapshot, opts Options) ([]byte, error) {
	dot := ToDOT(s, DOTOptions{Stacks: opts.Stacks})
	if opts.Format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", s.Board, err)
	}
	switch opts.Format {
	case FormatPNG:
		return ToPNG(ctx, svg, opts.Scale)
	case FormatPDF:
		return ToPDF(ctx, svg)
	}
	return svg, nil
}
