package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRunRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/team-runs", handler.GetTeamRunByOrgAndDate)
	mux.HandleFunc("GET /v1/team-runs/{runID}", handler.GetTeamRun)
}

func registerAdminRunRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/rosters/validate", RequireAdminToken(adminToken, http.HandlerFunc(handler.ValidateRoster)))
	mux.Handle("POST /v1/team-runs/generate", RequireAdminToken(adminToken, http.HandlerFunc(handler.GenerateTeamRun)))
	mux.Handle("POST /v1/team-runs/{runID}/publish", RequireAdminToken(adminToken, http.HandlerFunc(handler.PublishTeamRun)))
	mux.Handle("POST /v1/team-runs/{runID}/lock", RequireAdminToken(adminToken, http.HandlerFunc(handler.LockTeamRun)))
	mux.Handle("POST /v1/team-runs/{runID}/regenerate", RequireAdminToken(adminToken, http.HandlerFunc(handler.RegenerateTeamRun)))
}
