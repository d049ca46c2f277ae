package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
)

// RequestLogger logs one line per request with method, path, status and
// duration.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}
