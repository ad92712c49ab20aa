package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"interrupt", fmt.Errorf("load board: %w", context.Canceled), 130},
		{"bad board id", corkerrors.ValidateBoardID("../x"), 2},
		{"bad position", fmt.Errorf("move: %w", corkerrors.ValidateCoordinates(1, math.NaN())), 2},
		{"missing item", corkerrors.New(corkerrors.ErrCodeItemNotFound, "item 9"), 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
