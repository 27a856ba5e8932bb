package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/logging"
)

// Recover turns a handler panic into a 500 JSON body.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromContext(r.Context()).
				WithField("panic", fmt.Sprint(rec)).
				WithField("stack", string(debug.Stack())).
				Error("handler panic")
			httpx.JSONError(w, r, http.StatusInternalServerError, "internal_error", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
