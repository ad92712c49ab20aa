// Package config loads corkboard settings from a TOML file.
//
// Every section is optional; missing values take the defaults below. Durations
// are written as strings ("300ms", "5s").
//
//	[board]
//	viewport_width = 1280
//	viewport_height = 800
//
//	[store]
//	driver = "sqlite"
//	path = "corkboard.db"
//
//	[writeback]
//	workers = 2
//	timeout = "5s"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/board/placement"
	"github.com/matzehuels/corkboard/pkg/canvas"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/gesture"
	"github.com/matzehuels/corkboard/pkg/minimap"
	"github.com/matzehuels/corkboard/pkg/stack"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "corkboard.toml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverHTTP   = "http"
)

var drivers = []string{DriverMemory, DriverFile, DriverSQLite, DriverRedis, DriverMongo, DriverHTTP}

// Config is the complete configuration.
type Config struct {
	Board     BoardConfig     `toml:"board"`
	Gesture   gesture.Config  `toml:"gesture"`
	Stack     stack.Config    `toml:"stack"`
	Canvas    canvas.Config   `toml:"canvas"`
	Minimap   minimap.Config  `toml:"minimap"`
	Store     StoreConfig     `toml:"store"`
	Writeback WritebackConfig `toml:"writeback"`
	Server    ServerConfig    `toml:"server"`
	Cache     CacheConfig     `toml:"cache"`
}

// BoardConfig sizes the board and its notes.
type BoardConfig struct {
	ViewportWidth  float64 `toml:"viewport_width"`
	ViewportHeight float64 `toml:"viewport_height"`
	ItemWidth      float64 `toml:"item_width"`
	ItemHeight     float64 `toml:"item_height"`
	Spread         float64 `toml:"spread"`
	Jitter         float64 `toml:"jitter"`
	DeadZone       float64 `toml:"dead_zone"`
	// Seed fixes the placement generator; 0 draws a fresh seed per load.
	Seed uint64 `toml:"seed"`
	// ResyncInterval is the period of full board reloads; 0 disables them.
	ResyncInterval time.Duration `toml:"resync_interval"`
}

// Viewport returns the viewport size.
func (b BoardConfig) Viewport() board.Size {
	return board.Size{Width: b.ViewportWidth, Height: b.ViewportHeight}
}

// Item returns the note footprint.
func (b BoardConfig) Item() board.Size {
	return board.Size{Width: b.ItemWidth, Height: b.ItemHeight}
}

// Placement returns the placement generator options.
func (b BoardConfig) Placement() placement.Options {
	return placement.Options{Item: b.Item(), Jitter: b.Jitter, DeadZone: b.DeadZone}
}

// StoreConfig selects the position store.
type StoreConfig struct {
	Driver string `toml:"driver"`
	// Path is the file store directory or the sqlite database file.
	Path string `toml:"path"`
	// URL is the redis or mongo connection string, or the REST base URL.
	URL      string `toml:"url"`
	Database string `toml:"database"`
	// Timeout bounds each call of the http driver.
	Timeout time.Duration `toml:"timeout"`
}

// WritebackConfig tunes the write-behind queue.
type WritebackConfig struct {
	Workers int           `toml:"workers"`
	Buffer  int           `toml:"buffer"`
	Rate    float64       `toml:"rate"` // writes per second, 0 = unlimited
	Burst   int           `toml:"burst"`
	Timeout time.Duration `toml:"timeout"`
}

// ServerConfig configures `corkboard serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Rate and Burst limit requests per client address.
	Rate            float64       `toml:"rate"`
	Burst           int           `toml:"burst"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	DisableMetrics  bool          `toml:"disable_metrics"`
}

// CacheConfig configures the render cache.
type CacheConfig struct {
	Dir      string        `toml:"dir"`
	TTL      time.Duration `toml:"ttl"`
	Disabled bool          `toml:"disabled"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	b := &c.Board
	if b.ViewportWidth == 0 {
		b.ViewportWidth = 1280
	}
	if b.ViewportHeight == 0 {
		b.ViewportHeight = 800
	}
	def := placement.DefaultOptions()
	if b.ItemWidth == 0 {
		b.ItemWidth = def.Item.Width
	}
	if b.ItemHeight == 0 {
		b.ItemHeight = def.Item.Height
	}
	if b.Spread == 0 {
		b.Spread = board.DefaultSpread
	}
	if b.Jitter == 0 {
		b.Jitter = def.Jitter
	}
	if b.DeadZone == 0 {
		b.DeadZone = def.DeadZone
	}

	g, gd := &c.Gesture, gesture.DefaultConfig()
	if g.MoveThreshold == 0 {
		g.MoveThreshold = gd.MoveThreshold
	}
	if g.ClickThreshold == 0 {
		g.ClickThreshold = gd.ClickThreshold
	}
	if g.TapWindow == 0 {
		g.TapWindow = gd.TapWindow
	}

	s, sd := &c.Stack, stack.DefaultConfig()
	if s.MergeDistance == 0 {
		s.MergeDistance = sd.MergeDistance
	}
	if s.DetachDistance == 0 {
		s.DetachDistance = sd.DetachDistance
	}
	if s.MaxTilt == 0 {
		s.MaxTilt = sd.MaxTilt
	}

	cv, cd := &c.Canvas, canvas.DefaultConfig()
	if cv.MinScale == 0 {
		cv.MinScale = cd.MinScale
	}
	if cv.MaxScale == 0 {
		cv.MaxScale = cd.MaxScale
	}
	if cv.ResetDuration == 0 {
		cv.ResetDuration = cd.ResetDuration
	}

	m, md := &c.Minimap, minimap.DefaultConfig()
	if m.Diameter == 0 {
		m.Diameter = md.Diameter
	}
	if m.MaxMarkers == 0 {
		m.MaxMarkers = md.MaxMarkers
	}
	if m.HideAfter == 0 {
		m.HideAfter = md.HideAfter
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = 10 * time.Second
	}
	if c.Store.Database == "" {
		c.Store.Database = "corkboard"
	}

	w := &c.Writeback
	if w.Workers == 0 {
		w.Workers = 2
	}
	if w.Buffer == 0 {
		w.Buffer = 256
	}
	if w.Burst == 0 {
		w.Burst = 8
	}
	if w.Timeout == 0 {
		w.Timeout = 5 * time.Second
	}

	sv := &c.Server
	if sv.Addr == "" {
		sv.Addr = ":8080"
	}
	if sv.Rate == 0 {
		sv.Rate = 20
	}
	if sv.Burst == 0 {
		sv.Burst = 40
	}
	if sv.ShutdownTimeout == 0 {
		sv.ShutdownTimeout = 10 * time.Second
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
}

// Validate checks value ranges. It expects SetDefaults to have run.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	b := c.Board
	check(b.ViewportWidth > 0 && b.ViewportHeight > 0, "board: viewport must be positive")
	check(b.ItemWidth > 0 && b.ItemHeight > 0, "board: item size must be positive")
	check(b.Spread >= 1, "board: spread must be at least 1, got %v", b.Spread)
	check(b.Jitter >= 0 && b.Jitter < 0.5, "board: jitter must be in [0, 0.5), got %v", b.Jitter)
	check(b.DeadZone >= 0, "board: dead_zone must not be negative")
	check(b.ResyncInterval >= 0, "board: resync_interval must not be negative")

	g := c.Gesture
	check(g.MoveThreshold > 0, "gesture: move_threshold must be positive")
	check(g.ClickThreshold >= g.MoveThreshold,
		"gesture: click_threshold (%v) must not be below move_threshold (%v)", g.ClickThreshold, g.MoveThreshold)
	check(g.TapWindow > 0, "gesture: tap_window must be positive")

	s := c.Stack
	check(s.MergeDistance > 0, "stack: merge_distance must be positive")
	check(s.DetachDistance >= s.MergeDistance,
		"stack: detach_distance (%v) must not be below merge_distance (%v)", s.DetachDistance, s.MergeDistance)

	cv := c.Canvas
	check(cv.MinScale > 0 && cv.MinScale <= 1 && cv.MaxScale >= 1,
		"canvas: scale range [%v, %v] must contain 1", cv.MinScale, cv.MaxScale)

	check(c.Minimap.Diameter > 0, "minimap: diameter must be positive")
	check(c.Minimap.MaxMarkers >= 0, "minimap: max_markers must not be negative")

	st := c.Store
	check(slices.Contains(drivers, st.Driver), "store: unknown driver %q (want one of %v)", st.Driver, drivers)
	switch st.Driver {
	case DriverFile, DriverSQLite:
		check(st.Path != "", "store: driver %q requires path", st.Driver)
	case DriverRedis, DriverMongo:
		check(st.URL != "", "store: driver %q requires url", st.Driver)
	case DriverHTTP:
		check(corkerrors.ValidateURL(st.URL) == nil, "store: driver http requires an http(s) url")
	}

	w := c.Writeback
	check(w.Workers > 0, "writeback: workers must be positive")
	check(w.Buffer > 0, "writeback: buffer must be positive")
	check(w.Rate >= 0, "writeback: rate must not be negative")

	check(c.Server.Rate >= 0, "server: rate must not be negative")

	if len(errs) > 0 {
		return corkerrors.Wrap(corkerrors.ErrCodeInvalidConfig, errors.Join(errs...), "invalid configuration")
	}
	return nil
}

// Load reads path, applies defaults and validates the result. Unknown keys are
// rejected. An empty path or a missing DefaultFile yields the defaults.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path == "" {
		path = DefaultFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, corkerrors.Wrap(corkerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, corkerrors.New(corkerrors.ErrCodeInvalidConfig, "%s: unknown keys %v", path, undecoded)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
