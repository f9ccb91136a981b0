package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/recognize"
	"github.com/facegate/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes(people database.PersonRepository, logs database.LogRepository, extractor embedding.Extractor, engine *recognize.Engine) {
	// Create handlers
	statsHandler := handlers.NewStatsHandler(people, logs, s.indexes, extractor.Family())
	registerHandler := handlers.NewRegisterHandler(people, extractor, &s.config.Thresholds, s.indexes, statsHandler)
	recognizeHandler := handlers.NewRecognizeHandler(people, logs, engine)
	peopleHandler := handlers.NewPeopleHandler(people, extractor, &s.config.Thresholds, s.indexes, statsHandler)
	logsHandler := handlers.NewLogsHandler(logs)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", registerHandler.Register)
		r.Post("/recognize", recognizeHandler.Recognize)

		r.Get("/people", peopleHandler.List)
		r.Get("/people/{id}", peopleHandler.Get)
		r.Delete("/people/{id}", peopleHandler.Delete)
		r.Put("/people/{id}/photo", peopleHandler.UpdatePhoto)
		r.Get("/people/{id}/similar", peopleHandler.Similar)

		r.Get("/logs", logsHandler.List)
		r.Get("/stats", statsHandler.Get)
	})

	s.router.Get("/", s.serveLanding)
}

// serveLanding serves a minimal landing page pointing at the API.
func (s *Server) serveLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Facegate</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Facegate</h1>
        <p>Face recognition API. Health endpoint at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
