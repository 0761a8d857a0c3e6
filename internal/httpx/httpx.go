// Package httpx holds the JSON request/response helpers every handler uses.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"go-social/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// storable: valid UTF-8 without NUL, which Postgres text columns reject.
	_ = v.RegisterValidation("storable", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
	})
	return v
}

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// Status is the common {"status": "..."} acknowledgement.
type Status struct {
	Status string `json:"status"`
}

// OK is returned by most mutating endpoints.
var OK = Status{Status: "ok"}

// JSON writes v as a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error translates err into a status code and an ErrorBody. Errors that are
// not one of the apperr kinds are logged and reported as 500.
func Error(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	status := StatusFor(err)
	code, detail, ok := apperr.Describe(err)
	if !ok || status == http.StatusInternalServerError {
		if logger != nil {
			logger.Errorw("request failed", "error", err)
		}
		JSON(w, http.StatusInternalServerError, ErrorBody{
			Detail: http.StatusText(http.StatusInternalServerError),
			Code:   "internal_error",
		})
		return
	}
	JSON(w, status, ErrorBody{Detail: detail, Code: code})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Bind decodes the JSON body into v and runs its validate tags.
func Bind(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("malformed_body", "request body must be a valid JSON object")
	}
	return Validate(v)
}

// Validate runs the struct's validate tags and reports the first failing field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		return apperr.Validation("invalid_"+field, fmt.Sprintf("field %q failed %q validation", field, fe.Tag()))
	}
	return apperr.Validation("invalid_body", err.Error())
}

// IDParam reads a positive integer path parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid_"+name, fmt.Sprintf("path parameter %q must be a positive integer", name))
	}
	return id, nil
}

// IntQuery reads an optional non-negative integer query parameter.
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Validation("invalid_"+name, fmt.Sprintf("query parameter %q must be a non-negative integer", name))
	}
	return v, nil
}

// Image writes raw image bytes with a sniffed content type.
func Image(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
