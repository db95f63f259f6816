package httpx

import (
	"net/http"
	"time"
)

// NewClient returns the shared outbound client. Every upstream call rides a
// fixed timeout; per-step pacing is handled above this layer.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
