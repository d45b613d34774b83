// Package api holds the JSON response helpers and views shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/kenyaconnect/storefront/notify"
)

func OKResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorResponse writes {"error": message} plus any notices raised while
// handling the request.
func ErrorResponse(w http.ResponseWriter, status int, message string, notices ...notify.Notice) {
	body := struct {
		Error   string          `json:"error"`
		Notices []notify.Notice `json:"notices,omitempty"`
	}{Error: message, Notices: notices}
	OKResponse(w, status, body)
}

// DecodeJSON reads a JSON request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
