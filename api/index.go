package handler

import (
	"net/http"

	"github.com/shortlyhq/shortly/pkg/adapters/handler"
	"github.com/shortlyhq/shortly/pkg/adapters/repository/sqlite"
	"github.com/shortlyhq/shortly/pkg/config"
	"github.com/shortlyhq/shortly/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	service := services.NewLinkService(repo)
	mux = handler.NewRouter(cfg, service)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
