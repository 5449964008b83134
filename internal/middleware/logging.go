package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging devuelve un middleware que registra cada petición atendida. El
// token de entrega nunca se escribe en el log: es una credencial.
func Logging(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			log.Info("petición atendida",
				zap.String("método", r.Method),
				zap.String("ruta", r.URL.Path),
				zap.Int("estado", recorder.status),
				zap.Duration("duración", time.Since(start)),
			)
		})
	}
}
