// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/portfolio/service/internal/errs"
)

// Envelope is the standard API response envelope used for success and failure alike.
type Envelope struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Data     interface{}       `json:"data"`
	Errors   map[string]string `json:"errors,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// OKWithImage writes a 200 response carrying the image URL next to data.
func OKWithImage(w http.ResponseWriter, message, imageURL string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, ImageURL: imageURL})
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// Validation writes a 422 response with field-level detail.
func Validation(w http.ResponseWriter, v *errs.ValidationError) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Message: "validation failed",
		Errors:  v.Fields,
	})
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Err maps err onto the taxonomy in package errs. notFound is the message used for 404s.
func Err(w http.ResponseWriter, err error, notFound string) {
	if v, ok := errs.AsValidation(err); ok {
		Validation(w, v)
		return
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		NotFound(w, notFound)
	case errors.Is(err, errs.ErrConflict):
		Conflict(w, "resource is still in use")
	case errors.Is(err, errs.ErrStorageQuota):
		Validation(w, errs.Invalid("image", "exceeds the storage size limit"))
	case errors.Is(err, errs.ErrUploadFailed), errors.Is(err, errs.ErrStorageUnavailable):
		logError(err)
		Error(w, http.StatusInternalServerError, "image upload failed")
	case errors.Is(err, errs.ErrDeliveryFailed):
		logError(err)
		Error(w, http.StatusInternalServerError, "failed to send message, please try again")
	default:
		logError(err)
		InternalError(w)
	}
}

func logError(err error) {
	log.Error().Err(err).Msg("request failed")
}
