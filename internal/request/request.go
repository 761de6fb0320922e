// Package request holds small helpers for reading path parameters and bodies.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio/service/internal/errs"
)

// maxJSONBody caps JSON and urlencoded request bodies.
const maxJSONBody = 1 << 20

// ID parses the chi URL parameter name as a positive int64.
func ID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Decode fills dst from a JSON body. For form-encoded bodies, form is called
// with the parsed request instead so the caller can copy the fields it needs.
// Malformed bodies are reported as a validation failure on field "body".
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}, form func(r *http.Request)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxJSONBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return errs.Invalid("body", "malformed form body")
		}
		form(r)
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.Invalid("body", "invalid request body")
	}
	return nil
}
