// Package server exposes book export over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/book"
	"github.com/pwnholic/plotbook/internal/clients"
	"github.com/pwnholic/plotbook/internal/exports"
)

const maxBookBytes = 16 << 20

type Fetcher interface {
	FetchBook(ctx context.Context, id string) (*book.Book, error)
}

type Exporter interface {
	Export(b *book.Book) (*exports.Artifact, error)
}

type handler struct {
	fetcher  Fetcher
	exporter Exporter
}

// NewRouter wires the export routes. fetcher may be nil, in which case only
// exports of posted book documents are available.
func NewRouter(fetcher Fetcher, exporter Exporter) http.Handler {
	h := &handler{fetcher: fetcher, exporter: exporter}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			internal.Error("write error: %v", err)
		}
	})

	r.Route("/api/book", func(r chi.Router) {
		r.Post("/export-book", h.exportByID)
		r.Post("/export", h.exportDocument)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		internal.Info("%s %s %d %dB %v [%s]", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start), middleware.GetReqID(r.Context()))
	})
}

type exportRequest struct {
	ID string `json:"id"`
}

func (h *handler) exportByID(w http.ResponseWriter, r *http.Request) {
	if h.fetcher == nil {
		writeError(w, http.StatusNotImplemented, "book source is not configured")
		return
	}

	var req exportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "request body must be {\"id\": \"<book id>\"}")
		return
	}

	b, err := h.fetcher.FetchBook(r.Context(), req.ID)
	switch {
	case errors.Is(err, clients.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "Book not found")
		return
	case err != nil:
		internal.Error("Failed to fetch book %s: %v", req.ID, err)
		writeError(w, http.StatusBadGateway, "failed to fetch book")
		return
	}

	h.export(w, b)
}

func (h *handler) exportDocument(w http.ResponseWriter, r *http.Request) {
	b, err := book.Decode(http.MaxBytesReader(w, r.Body, maxBookBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.export(w, b)
}

func (h *handler) export(w http.ResponseWriter, b *book.Book) {
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	artifact, err := h.exporter.Export(b)
	if err != nil {
		internal.Error("Failed to export book %s: %v", b.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to export book")
		return
	}

	w.Header().Set("Content-Type", exports.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		internal.Error("write error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		internal.Error("write error: %v", err)
	}
}

// Serve runs handler on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func Serve(ctx context.Context, addr string, handler http.Handler, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.Info("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	internal.Info("Server stopped")
	return nil
}
