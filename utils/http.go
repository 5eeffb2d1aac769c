package utils

import (
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds calls to external collaborators.
const DefaultHTTPTimeout = 20 * time.Second

// NewHTTPClient returns a client with the given timeout, or the default one.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
