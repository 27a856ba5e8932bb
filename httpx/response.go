// Package httpx holds the JSON response helpers every handler writes through.
package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/diewo77/go-chantiers/i18n"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/logging"
)

// maxBody caps JSON request bodies.
const maxBody = 2 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes code translated into the request language.
func JSONError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	lang := i18n.Default
	if r != nil {
		lang = i18n.LangFrom(r.Context())
	}
	JSON(w, status, ErrorResponse{Error: code, Message: i18n.T(lang, code), Details: translate(lang, details)})
}

// WriteError maps err to its status and writes the JSON error body.
// Server-side failures are logged with the request logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
	}
	JSONError(w, r, status, apperr.CodeOf(err), apperr.DetailsOf(err))
}

// Decode reads a JSON body into dst. Failures are returned as a 400 invalid_json.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return apperr.E(apperr.BadRequest, "invalid_json", err)
	}
	return nil
}

// PathID parses the {name} path value as a positive id.
func PathID(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.E(apperr.BadRequest, "invalid_id", err)
	}
	return uint(n), nil
}

// translate turns field violation codes into messages while keeping field keys.
func translate(lang string, details any) any {
	v, ok := details.(map[string]string)
	if !ok {
		return details
	}
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = i18n.T(lang, code)
	}
	return out
}
