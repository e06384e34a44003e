package utils

import (
	"net/http"

	_ "github.com/akolanti/DocRAG/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

func GetNewUUID() string {
	return uuid.New().String()
}

type RouterClient struct {
	Router *chi.Mux
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

// NewRouter builds a fresh router with /metrics and, optionally, the swagger ui.
func NewRouter(withSwagger bool) RouterClient {
	r := chi.NewRouter()
	if withSwagger {
		InitSwagger(r)
	}
	//register prometheus
	r.Handle("/metrics", promhttp.Handler())
	return RouterClient{Router: r}
}

func InitSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
