package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/api"
	"github.com/matzehuels/corkboard/pkg/config"
	"github.com/matzehuels/corkboard/pkg/store"
	"github.com/matzehuels/corkboard/pkg/store/mongo"
	"github.com/matzehuels/corkboard/pkg/store/redis"
	"github.com/matzehuels/corkboard/pkg/store/sqlite"
)

// storeFlags override the [store] section of the config file.
type storeFlags struct {
	driver string
	path   string
	url    string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.driver, "store", "", "store driver: memory, file, sqlite, redis, mongo or http")
	pf.StringVar(&f.path, "store-path", "", "board directory (file) or database file (sqlite)")
	pf.StringVar(&f.url, "store-url", "", "redis or mongo connection string, or backend base URL (http)")
}

// apply copies the set flags into cfg.
func (f *storeFlags) apply(cfg *config.StoreConfig) bool {
	changed := false
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{f.driver, &cfg.Driver},
		{f.path, &cfg.Path},
		{f.url, &cfg.URL},
	} {
		if o.flag != "" {
			*o.dst = o.flag
			changed = true
		}
	}
	return changed
}

// openStore connects the configured position store.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverFile:
		return store.NewFileStore(cfg.Path)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Path)
	case config.DriverRedis:
		return redis.Open(ctx, cfg.URL)
	case config.DriverMongo:
		return mongo.Open(ctx, cfg.URL, cfg.Database)
	case config.DriverHTTP:
		return api.NewClient(cfg.URL, api.Options{
			HTTPClient: &http.Client{Timeout: cfg.Timeout},
		})
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// withStore opens the store, runs fn and closes the store.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg := c.config().Store
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()
	c.Logger.Debug("store opened", "driver", cfg.Driver)
	return fn(st)
}
