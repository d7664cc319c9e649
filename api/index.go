package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/popular-clicks/pkg/bootstrap"
	"github.com/wadjakorntonsri/popular-clicks/pkg/config"
	"github.com/wadjakorntonsri/popular-clicks/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "")

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	app, err := bootstrap.New(context.Background(), cfg, logger, bootstrap.Options{})
	if err != nil {
		panic(err)
	}

	mux = app.Handler()
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
