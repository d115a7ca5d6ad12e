// Package httpx provides HTTP response utilities shared by the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxJSONBody bounds decoded request bodies.
const MaxJSONBody = 10 << 10

const (
	// StatusSuccess marks a successful envelope.
	StatusSuccess = "success"
	// StatusFail marks a client error envelope.
	StatusFail = "fail"
	// StatusError marks a server error envelope.
	StatusError = "error"
)

// Envelope is the error body returned to clients.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Fail sends the {status, message} envelope. 4xx responses are "fail", 5xx are "error".
func Fail(w http.ResponseWriter, status int, message string) {
	kind := StatusFail
	if status >= http.StatusInternalServerError {
		kind = StatusError
	}
	JSON(w, status, Envelope{Status: kind, Message: message})
}

// DecodeJSON decodes a bounded JSON request body into target.
// Decoding failures are reported as validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if r.Body == nil {
		return Validation("Request body is required")
	}
	body := http.MaxBytesReader(w, r.Body, MaxJSONBody)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Validation(fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit)).Wrap(err)
		}
		return Validation("Invalid JSON body").Wrap(err)
	}
	return nil
}
