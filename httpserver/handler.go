package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/samhug/zfs-remote-keyloader/cmdutil"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
)

const (
	// keyField is the form field carrying the decryption key.
	keyField = "key"

	// maxBodySize is the maximum allowed request body size (1MB).
	maxBodySize = 1024 * 1024
)

// Handler serves the key entry form and forwards submitted keys to the
// KeyLoader for a single, fixed dataset.
type Handler struct {
	keyLoader interfaces.KeyLoader
	dataset   string
	shutdown  *ShutdownSignal
	log       *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
//
// Parameters:
//   - keyLoader: backend used to unlock the dataset
//   - dataset: the only dataset this handler will ever unlock
//   - shutdown: signalled after the first successful unlock
//   - log: Structured logger for operational insights
func NewHandler(keyLoader interfaces.KeyLoader, dataset string, shutdown *ShutdownSignal, log *slog.Logger) *Handler {
	return &Handler{
		keyLoader: keyLoader,
		dataset:   dataset,
		shutdown:  shutdown,
		log:       log,
	}
}

// RegisterRoutes mounts the handler on r. Anything that is not GET / or
// POST /loadkey, including a known path with the wrong method, gets an
// empty 404.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleForm)
	r.Post("/loadkey", h.HandleLoadKey)
	r.NotFound(h.HandleNotFound)
	r.MethodNotAllowed(h.HandleNotFound)
}

// HandleForm serves the key entry form.
//
// URL format: GET /
func (h *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := formTmpl.Execute(w, formData{Dataset: h.dataset}); err != nil {
		h.log.Error("Failed to render form", "err", err)
	}
}

// HandleLoadKey attempts to unlock the dataset with the submitted key.
//
// URL format: POST /loadkey
// Request body: application/x-www-form-urlencoded with a required "key" field
//
// Responses:
//   - 200: key loaded, the server will shut down once the response is sent
//   - 400: body unreadable or "key" missing; the backend is not invoked
//   - 401: the backend failed, body carries its error text
//
// The key is passed to the backend verbatim and is never logged.
func (h *Handler) HandleLoadKey(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.log.Warn("Failed to read request body", "err", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	// parse errors may quote parts of the key, so they are not reported
	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	values, ok := form[keyField]
	if !ok || len(values) == 0 {
		http.Error(w, fmt.Sprintf("Missing %q field in form data", keyField), http.StatusBadRequest)
		return
	}

	// a disconnecting client must not abort the unlock halfway through
	ctx := context.WithoutCancel(r.Context())
	if err := h.keyLoader.LoadKey(ctx, h.dataset, []byte(values[0])); err != nil {
		var spawnErr *cmdutil.SpawnError
		if errors.As(err, &spawnErr) {
			h.log.Error("Could not run key loader", "dataset", h.dataset, "err", err)
		} else {
			h.log.Warn("Key load failed", "dataset", h.dataset, "err", err)
		}
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	h.log.Info("Key loaded successfully", "dataset", h.dataset)
	if !h.shutdown.Signal() {
		h.log.Debug("Shutdown already pending")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Success! Key loaded for %s\n", h.dataset)
}

// HandleNotFound responds 404 with an empty body.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
