// Package server exposes the catalog and its state over a JSON API.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/jdholdren/vaultfeed/internal/catalog"
	"github.com/jdholdren/vaultfeed/internal/serverutil"
	"github.com/jdholdren/vaultfeed/internal/summary"
)

type (
	Server struct {
		*http.Server

		cat        *catalog.Catalog
		summarizer *summary.Summarizer
	}

	Config struct {
		Port       int
		CorsOrigin string
	}
)

func New(cfg Config, cat *catalog.Catalog, summarizer *summary.Summarizer) *Server {
	r := serverutil.ErrRouter{Router: mux.NewRouter()}

	srvr := &Server{
		cat:        cat,
		summarizer: summarizer,
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			ReadTimeout: 5 * time.Second,
			// Refreshes fan out to every feed and can take a while.
			WriteTimeout: 60 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{cfg.CorsOrigin}),
				handlers.AllowedMethods([]string{
					http.MethodGet, http.MethodPost, http.MethodPatch,
					http.MethodDelete, http.MethodOptions,
				}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(serverutil.AccessLogMiddleware)

	r.HandleFuncE("/api/feeds", srvr.getFeeds).Methods(http.MethodGet)
	r.HandleFuncE("/api/feeds", srvr.postFeed).Methods(http.MethodPost)
	r.HandleFuncE("/api/feeds/{id}", srvr.deleteFeed).Methods(http.MethodDelete)
	r.HandleFuncE("/api/feeds/{id}", srvr.patchFeed).Methods(http.MethodPatch)

	r.HandleFuncE("/api/refresh", srvr.postRefresh).Methods(http.MethodPost)
	r.HandleFuncE("/api/articles", srvr.getArticles).Methods(http.MethodGet)
	r.HandleFuncE("/api/articles/select", srvr.postSelect).Methods(http.MethodPost)
	r.HandleFuncE("/api/articles/content", srvr.getContent).Methods(http.MethodGet)
	r.HandleFuncE("/api/articles/read", srvr.postRead).Methods(http.MethodPost)
	r.HandleFuncE("/api/articles/read-all", srvr.postReadAll).Methods(http.MethodPost)
	r.HandleFuncE("/api/articles/save", srvr.postSave).Methods(http.MethodPost)

	r.HandleFuncE("/api/summarize", srvr.postSummarize).Methods(http.MethodPost)

	r.HandleFuncE("/api/export", srvr.getExport).Methods(http.MethodGet)
	r.HandleFuncE("/api/import", srvr.postImport).Methods(http.MethodPost)

	r.HandleFuncE("/api/preferences", srvr.getPreferences).Methods(http.MethodGet)
	r.HandleFuncE("/api/preferences", srvr.patchPreferences).Methods(http.MethodPatch)

	return srvr
}
