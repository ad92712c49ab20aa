// Package httputil provides HTTP helpers for the corkboard REST client.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for errors
// wrapped in [RetryableError]. [CheckResponse] turns a response into an error
// and marks the transient ones (5xx, 429) as retryable:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// Reads of the item list retry. Position writes do not: they are at-most-once,
// and a lost write is repaired by the next full board reload.
package httputil
