package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/api/models"
)

// Recovery converts handler panics into logged 500 Problem responses.
// http.ErrAbortHandler passes through so the server can abort the
// connection as usual.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				writePanicResponse(log, w, r, rec)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writePanicResponse(log zerolog.Logger, w http.ResponseWriter, r *http.Request, rec any) {
	requestID := GetRequestID(r.Context())

	log.Error().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Interface("panic", rec).
		Str("stack", string(debug.Stack())).
		Msg("panic recovered")

	problem := models.NewInternalError(requestID, "an unexpected error occurred")
	problem.Instance = r.URL.Path
	problem.Write(w)
}
