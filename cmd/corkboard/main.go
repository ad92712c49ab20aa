package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/internal/cli"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	if err == nil {
		return
	}
	code := exitCode(err)
	if code != 130 {
		fmt.Fprintln(os.Stderr, "corkboard:", err)
	}
	os.Exit(code)
}

// exitCode is 130 for an interrupt (shell convention for SIGINT), 2 when the
// user supplied something invalid and 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	if code := corkerrors.GetCode(err); code != "" && corkerrors.HTTPStatus(code) == http.StatusBadRequest {
		return 2
	}
	return 1
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log gestures, writes and store calls")

	// Raise the level before the root pre-run reads the config and opens
	// the store, so those steps are logged too.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if loadConfig == nil {
			return nil
		}
		return loadConfig(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
