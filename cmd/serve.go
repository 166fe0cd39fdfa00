package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(requestLogger)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, env.Pipeline.Health())
		})

		r.Post("/api/score-customer", func(w http.ResponseWriter, req *http.Request) {
			var p model.CustomerProfile
			if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			a, err := env.Pipeline.Assess(req.Context(), &p)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, a)
		})

		r.Post("/api/score-batch", func(w http.ResponseWriter, req *http.Request) {
			customers, err := readBatchBody(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if len(customers) == 0 {
				writeError(w, http.StatusBadRequest, "customers is required")
				return
			}

			items := env.Pipeline.AssessBatch(req.Context(), customers)

			out := batchOutput{Total: len(items)}
			for i, item := range items {
				if item.Err != nil {
					out.Failed++
					out.Failures = append(out.Failures, batchFailure{
						CustomerID: customers[i].CustomerID,
						Error:      item.Err.Error(),
					})
					continue
				}
				out.Succeeded++
				out.Assessments = append(out.Assessments, item.Assessment)
			}
			writeJSON(w, http.StatusOK, out)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// readBatchBody accepts either a JSON {"customers": [...]} payload or a raw
// CSV upload (Content-Type text/csv).
func readBatchBody(req *http.Request) ([]model.CustomerProfile, error) {
	if strings.HasPrefix(req.Header.Get("Content-Type"), "text/csv") {
		profiles, err := model.ReadProfiles(req.Body)
		if err != nil {
			return nil, eris.Wrap(err, "parse CSV body")
		}
		return profiles, nil
	}

	var body struct {
		Customers []model.CustomerProfile `json:"customers"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return nil, eris.New("invalid request body")
	}
	return body.Customers, nil
}

// requestLogger tags each request with an ID and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)

		zap.L().Info("http request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
