/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"evewatch/internal/usecase/dashboard"
)

type stubDashboard struct {
	health    dashboard.HealthReport
	overview  dashboard.Overview
	groups    []dashboard.GroupSummary
	group     dashboard.GroupDetail
	character dashboard.CharacterDetail
	err       error
}

func (s *stubDashboard) Health(context.Context) dashboard.HealthReport { return s.health }

func (s *stubDashboard) Overview(context.Context, int) (dashboard.Overview, error) {
	return s.overview, s.err
}

func (s *stubDashboard) ListGroups(context.Context) ([]dashboard.GroupSummary, error) {
	return s.groups, s.err
}

func (s *stubDashboard) GroupDetail(context.Context, string) (dashboard.GroupDetail, error) {
	return s.group, s.err
}

func (s *stubDashboard) CharacterDetail(context.Context, string) (dashboard.CharacterDetail, error) {
	return s.character, s.err
}

func doRequest(t *testing.T, svc dashboardReadService, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	newDashboardHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(rec.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return value
}

func TestHealthEndpoint(t *testing.T) {
	svc := &stubDashboard{health: dashboard.HealthReport{OK: true, CheckRunCount: 7}}

	rec := doRequest(t, svc, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	report := decodeBody[dashboard.HealthReport](t, rec)
	if report.CheckRunCount != 7 {
		t.Fatalf("report = %+v", report)
	}
}

func TestHealthEndpointUnhealthy(t *testing.T) {
	hasDSN := true
	hasKey := false
	svc := &stubDashboard{health: dashboard.HealthReport{
		OK:             false,
		Error:          "database is locked",
		HasDatabaseDSN: &hasDSN,
		HasServiceKey:  &hasKey,
	}}

	rec := doRequest(t, svc, "/api/health")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	report := decodeBody[dashboard.HealthReport](t, rec)
	if report.HasDatabaseDSN == nil || !*report.HasDatabaseDSN {
		t.Fatalf("has_database_dsn = %v", report.HasDatabaseDSN)
	}
	if report.HasServiceKey == nil || *report.HasServiceKey {
		t.Fatalf("has_service_key = %v", report.HasServiceKey)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	svc := &stubDashboard{overview: dashboard.Overview{
		LatestRuns: []dashboard.RunInfo{{RunID: 3, CheckType: "pi", OK: true}},
		Issues:     2,
		Lookback:   dashboard.DefaultRunLookback,
	}}

	rec := doRequest(t, svc, "/api/overview")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	overview := decodeBody[dashboard.Overview](t, rec)
	if len(overview.LatestRuns) != 1 || overview.Issues != 2 {
		t.Fatalf("overview = %+v", overview)
	}
}

func TestGroupsEndpoint(t *testing.T) {
	svc := &stubDashboard{groups: []dashboard.GroupSummary{{Name: "Wormhole Corp", Characters: 2}}}

	rec := doRequest(t, svc, "/api/groups")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	groups := decodeBody[[]dashboard.GroupSummary](t, rec)
	if len(groups) != 1 || groups[0].Name != "Wormhole Corp" {
		t.Fatalf("groups = %+v", groups)
	}
}

func TestGroupDetailEndpointNotFound(t *testing.T) {
	svc := &stubDashboard{err: dashboard.ErrGroupNotFound}

	rec := doRequest(t, svc, "/api/groups/No%20Group")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCharacterDetailEndpoint(t *testing.T) {
	svc := &stubDashboard{character: dashboard.CharacterDetail{
		CharacterID: 1001,
		Name:        "Alice",
		Group:       "Wormhole Corp",
		Checks:      map[string]*dashboard.CheckInfo{"pi": {Status: "pass", CheckedAt: "2026-01-01T00:00:01Z"}},
	}}

	rec := doRequest(t, svc, "/api/characters/Alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	detail := decodeBody[dashboard.CharacterDetail](t, rec)
	if detail.CharacterID != 1001 || detail.Checks["pi"].Status != "pass" {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestCharacterDetailEndpointNotFound(t *testing.T) {
	svc := &stubDashboard{err: dashboard.ErrCharacterNotFound}

	rec := doRequest(t, svc, "/api/characters/Nobody")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEndpointInternalError(t *testing.T) {
	svc := &stubDashboard{err: errors.New("database is locked")}

	rec := doRequest(t, svc, "/api/overview")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] == "" {
		t.Fatalf("body = %v", body)
	}
}
