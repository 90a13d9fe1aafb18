package web

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"runtime/debug"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// requestScope travels in the request context for the life of one bridge
// call. RequireAuth fills in the operator, so the access line written after
// the handler returns can name the cashier and terminal.
type requestScope struct {
	id       string
	operator *Operator
}

type scopeKey struct{}

// Request ids double as default sale idempotency keys, so they are kept to a
// charset that is safe in logs and in the sales table.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

func scopeFromContext(ctx context.Context) *requestScope {
	sc, _ := ctx.Value(scopeKey{}).(*requestScope)
	return sc
}

// requestIDFromContext returns the request id, or "" outside Terminal.
func requestIDFromContext(ctx context.Context) string {
	if sc := scopeFromContext(ctx); sc != nil {
		return sc.id
	}
	return ""
}

func (sc *requestScope) who() string {
	if sc.operator == nil {
		return "-"
	}
	return sc.operator.Cashier + "@" + sc.operator.TerminalID
}

// Terminal opens the request scope, recovers panics and writes one access
// line per call:
//
//	[<request-id>] <cashier>@<terminal> METHOD /path status bytes duration
//
// A well-formed incoming X-Request-ID is kept, so a UI that retries a call
// with the same id is logged, and for checkout deduplicated, as one request.
func Terminal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sc := &requestScope{id: r.Header.Get("X-Request-ID")}
		if !validRequestID.MatchString(sc.id) {
			sc.id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", sc.id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(context.WithValue(r.Context(), scopeKey{}, sc))

		defer func() {
			if rv := recover(); rv != nil {
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				log.Printf("[%s] panic: %v\n%s", sc.id, rv, debug.Stack())
				if ww.Status() == 0 {
					writeError(ww, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Printf("[%s] %s %s %s %d %dB %s", sc.id, sc.who(), r.Method, r.URL.Path,
				status, ww.BytesWritten(), time.Since(start).Round(time.Microsecond))
		}()

		next.ServeHTTP(ww, r)
	})
}

// CORS answers for the desktop shell's origins only. An empty list disables
// CORS entirely.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
