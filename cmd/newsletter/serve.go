package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsletter/internal/app"
	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/metrics"
	"github.com/deusflow/newsletter/internal/newsletter"
	"github.com/deusflow/newsletter/internal/profile"
	"github.com/spf13/cobra"
)

const maxProfileBytes = 4 << 10

// runner builds newsletters for the HTTP handlers.
type runner interface {
	Run(ctx context.Context, raw string) (*newsletter.Document, error)
}

// statsSource contributes entries to /metrics.
type statsSource interface {
	GetStats() map[string]interface{}
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve newsletters over HTTP along with /health and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newMux(rt.pipeline, metrics.Global, rt.quota),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting HTTP server", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down HTTP server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func newMux(r runner, m *metrics.Metrics, extra ...statsSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler(m))
	mux.HandleFunc("GET /metrics", metricsHandler(m, extra...))
	mux.HandleFunc("POST /newsletter", newsletterHandler(r, m))
	return mux
}

func newsletterHandler(r runner, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxProfileBytes))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		format := req.URL.Query().Get("format")
		if format != "" && format != formatMarkdown && format != formatHTML {
			http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
			return
		}

		doc, err := r.Run(req.Context(), strings.TrimSpace(string(body)))
		if err != nil {
			var fe *profile.FormatError
			switch {
			case errors.As(err, &fe):
				http.Error(w, fe.Error(), http.StatusBadRequest)
			case errors.Is(err, app.ErrEmptyResult):
				http.Error(w, emptyMessage, http.StatusServiceUnavailable)
			default:
				logger.Error("newsletter request failed", "error", err)
				m.SetError(err.Error())
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		data, ext, contentType, err := render(doc, format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", newsletter.Filename(doc, ext)))
		_, _ = w.Write(data)
	}
}

func healthHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stats := m.GetStats()

		status := "ok"
		code := http.StatusOK
		if !stats["is_healthy"].(bool) {
			status = "error"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, map[string]interface{}{
			"status":     status,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		})
	}
}

func metricsHandler(m *metrics.Metrics, extra ...statsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stats := m.GetStats()
		for _, src := range extra {
			for k, v := range src.GetStats() {
				stats[k] = v
			}
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
