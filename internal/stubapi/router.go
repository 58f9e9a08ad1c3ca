package stubapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

// SetupRouter настраивает маршруты заглушки: оба вендора живут на одном
// сервере под собственными префиксами.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(h.logger))

	r.Route("/dell", func(r chi.Router) {
		h.vendorRoutes(r, model.VendorDell)
	})
	r.Route("/lenovo", func(r chi.Router) {
		h.vendorRoutes(r, model.VendorLenovo)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

func (h *Handler) vendorRoutes(r chi.Router, vendor model.VendorType) {
	r.Post("/auth/login", h.login(vendor))

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Get("/claims", h.listClaims(vendor))
		r.Post("/claims", h.createClaim(vendor))
		r.Get("/warranty/{serviceTag}", h.checkWarranty(vendor))
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
