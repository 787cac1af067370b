/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"evewatch/internal/bootstrap"
	"evewatch/internal/bootstrap/logging"
	"evewatch/internal/errs"
	"evewatch/internal/usecase/dashboard"
	"evewatch/internal/usecase/ingest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only dashboard API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *ingest.Service, dashboardSvc *dashboard.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newDashboardHandler(dashboardSvc),
		}

		logging.Info(ctx, "dashboard server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "dashboard server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve dashboard")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

// dashboardReadService is the slice of the dashboard service the HTTP
// handler needs; tests substitute it.
type dashboardReadService interface {
	Health(ctx context.Context) dashboard.HealthReport
	Overview(ctx context.Context, lookback int) (dashboard.Overview, error)
	ListGroups(ctx context.Context) ([]dashboard.GroupSummary, error)
	GroupDetail(ctx context.Context, name string) (dashboard.GroupDetail, error)
	CharacterDetail(ctx context.Context, name string) (dashboard.CharacterDetail, error)
}

type dashboardHTTPHandler struct {
	svc dashboardReadService
}

type dashboardErrorResponse struct {
	Error string `json:"error"`
}

func newDashboardHandler(svc dashboardReadService) http.Handler {
	h := &dashboardHTTPHandler{svc: svc}

	r := chi.NewRouter()
	r.Get("/api/health", h.handleHealth)
	r.Get("/api/overview", h.handleOverview)
	r.Get("/api/groups", h.handleGroups)
	r.Get("/api/groups/{name}", h.handleGroupDetail)
	r.Get("/api/characters/{name}", h.handleCharacterDetail)
	return r
}

func (h *dashboardHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Health(r.Context())
	status := http.StatusOK
	if !report.OK {
		status = http.StatusInternalServerError
	}
	writeDashboardJSON(w, status, report)
}

func (h *dashboardHTTPHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context(), dashboard.DefaultRunLookback)
	if err != nil {
		writeDashboardError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDashboardJSON(w, http.StatusOK, overview)
}

func (h *dashboardHTTPHandler) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		writeDashboardError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDashboardJSON(w, http.StatusOK, groups)
}

func (h *dashboardHTTPHandler) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := h.svc.GroupDetail(r.Context(), name)
	if err != nil {
		if errors.Is(err, dashboard.ErrGroupNotFound) {
			writeDashboardError(w, http.StatusNotFound, "unknown group")
			return
		}
		writeDashboardError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDashboardJSON(w, http.StatusOK, detail)
}

func (h *dashboardHTTPHandler) handleCharacterDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := h.svc.CharacterDetail(r.Context(), name)
	if err != nil {
		if errors.Is(err, dashboard.ErrCharacterNotFound) {
			writeDashboardError(w, http.StatusNotFound, "unknown character")
			return
		}
		writeDashboardError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDashboardJSON(w, http.StatusOK, detail)
}

func writeDashboardError(w http.ResponseWriter, status int, message string) {
	writeDashboardJSON(w, status, dashboardErrorResponse{Error: message})
}

func writeDashboardJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
