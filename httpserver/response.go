package httpserver

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 4 << 10

var jsonAPI = sonic.Config{
	EscapeHTML:       false,
	CompactMarshaler: true,
	NoNullSliceOrMap: true,
}.Froze()

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := jsonAPI.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error","message":"Something went wrong. Please try again later."}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// decodeBody reads a bounded JSON body into dst. An empty body leaves dst untouched when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return NewUserError(http.StatusBadRequest, "invalid_body", "Request body could not be read.", fmt.Sprintf("read body: %v", err))
	}
	if len(data) == 0 {
		if allowEmpty {
			return nil
		}
		return NewUserError(http.StatusBadRequest, "invalid_body", "Request body is required.", "empty body")
	}
	if err := jsonAPI.Unmarshal(data, dst); err != nil {
		return NewUserError(http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.", fmt.Sprintf("decode body: %v", err))
	}
	return nil
}
