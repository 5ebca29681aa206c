package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterOptions struct {
	// запросов в минуту на /callback, 0 = без лимита
	CallbackRateLimit int
}

func NewRouter(h *HealthHandler, callback http.HandlerFunc, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Line-Signature"},
	}))
	RegisterRoutes(r, h, callback, opts)
	return r
}

func RegisterRoutes(r chi.Router, h *HealthHandler, callback http.HandlerFunc, opts RouterOptions) {
	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		// --- служебные ---
		pr.Get("/", h.Status)
		pr.Get("/ping", h.Ping)

		// --- вебхук LINE ---
		cb := pr
		if opts.CallbackRateLimit > 0 {
			cb = pr.With(httprate.LimitAll(opts.CallbackRateLimit, time.Minute))
		}
		cb.Post("/callback", callback)
	})
}
