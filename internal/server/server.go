// Package server serves the generated site directory over plain HTTP.
package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/selimbr/askaloud/internal/logger"
)

// DefaultPort is where the site is served unless overridden.
const DefaultPort = 8000

// Handler returns the router serving root as static content. Requests are
// not logged — the terminal is reserved for build output.
func Handler(root string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Handle("/*", http.FileServer(http.Dir(root)))
	return r
}

// ListenAndServe serves root on the given port. It blocks until the
// listener fails (or the process is interrupted).
func ListenAndServe(root string, port int, log *logger.Logger) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("site directory: %w", err)
	}

	addr := fmt.Sprintf(":%d", port)
	log.Info("serving %s on http://localhost:%d", root, port)
	return http.ListenAndServe(addr, Handler(root))
}
