package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	transient := &RetryableError{Err: errors.New("connection reset")}
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 1, false},
		{"retryable then success", 2, transient, 3, false},
		{"retryable exhausts attempts", 5, transient, 3, true},
		{"permanent stops immediately", 5, permanent, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("down")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCheckResponse(t *testing.T) {
	tests := []struct {
		status        int
		body          string
		wantErr       bool
		wantRetryable bool
	}{
		{200, "", false, false},
		{204, "", false, false},
		{400, "bad position", true, false},
		{404, "", true, false},
		{429, "slow down", true, true},
		{500, "boom", true, true},
		{503, "", true, true},
	}
	for _, tt := range tests {
		resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
		err := CheckResponse(resp)
		if (err != nil) != tt.wantErr {
			t.Errorf("%d: err = %v, wantErr %v", tt.status, err, tt.wantErr)
			continue
		}
		if err == nil {
			continue
		}
		if IsRetryable(err) != tt.wantRetryable {
			t.Errorf("%d: retryable = %v, want %v", tt.status, IsRetryable(err), tt.wantRetryable)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != tt.status || se.Message != tt.body {
			t.Errorf("%d: StatusError = %+v", tt.status, se)
		}
	}
}
