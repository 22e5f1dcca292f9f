package handler

import (
	"net/http"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
)

// statusFor maps application error kinds to HTTP status codes. Unknown
// kinds are treated as upstream failures.
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
