package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/i18n"
	"github.com/diewo77/go-pos/internal/money"
	"github.com/diewo77/go-pos/internal/services"
	"github.com/rs/zerolog"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(k services.Kind) int {
	switch k {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes the JSON error body with a message in the client's language.
func fail(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	httpx.JSON(w, status, httpx.ErrorResponse{Error: code, Message: i18n.T(lang, code), Details: details})
}

// writeError renders err as the JSON error body. Internal failures are logged
// and answered without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *services.Error
	if !errors.As(err, &se) || se.Kind == services.KindInternal {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		fail(w, r, http.StatusInternalServerError, services.CodeInternal, nil)
		return
	}
	var details any
	if len(se.Fields) > 0 {
		details = se.Fields
	}
	fail(w, r, statusFor(se.Kind), se.Code, details)
}

// decode reads the JSON body into dst, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		if errors.Is(err, httpx.ErrEmptyBody) {
			fail(w, r, http.StatusBadRequest, "empty_body", nil)
			return false
		}
		if errors.Is(err, money.ErrOutOfRange) {
			fail(w, r, http.StatusBadRequest, "amount_out_of_range", nil)
			return false
		}
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

// pathID parses the {id} path value, answering 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		fail(w, r, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
