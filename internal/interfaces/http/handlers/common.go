// Common helper functions shared by the HTTP handlers.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/toxscope/toxscope/pkg/errors"
)

// maxRequestBody bounds JSON request bodies. Lasso paths are the largest
// expected payload and stay far below this.
const maxRequestBody = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an application error to its HTTP status and writes the
// structured error body. Internal errors are masked; the code survives so
// clients and logs can still be correlated.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Code: code.String(), Message: msg})
}

// decodeJSON decodes a request body into v, rejecting unknown fields and
// oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}
