package httpserver

import (
	"net/http"
	"time"
)

// writeGrace lets a handler that hit the request timeout still write its
// error response.
const writeGrace = 5 * time.Second

// New builds an HTTP server whose write deadline outlasts requestTimeout.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + writeGrace,
		IdleTimeout:       60 * time.Second,
	}
}
