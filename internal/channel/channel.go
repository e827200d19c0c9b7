package channel

import (
	"net/http"
	"time"
)

// NewHTTPClient builds the client both adapters share. The timeout
// bounds every provider call so one slow webhook cannot stall a batch.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
