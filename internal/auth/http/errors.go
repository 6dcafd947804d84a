package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

// kindStatus maps service error kinds to HTTP status codes.
var kindStatus = map[service.ErrorKind]int{
	service.KindInvalidCredentials:  http.StatusUnauthorized,
	service.KindMFARequired:         http.StatusUnauthorized,
	service.KindMFAInvalid:          http.StatusUnauthorized,
	service.KindRecoveryCodeInvalid: http.StatusUnauthorized,
	service.KindRefreshInvalid:      http.StatusUnauthorized,
	service.KindRefreshExpired:      http.StatusUnauthorized,
	service.KindStoreUnavailable:    http.StatusServiceUnavailable,
	service.KindMFAAlreadyEnabled:   http.StatusConflict,
	service.KindEmailTaken:          http.StatusConflict,
	service.KindSessionNotFound:     http.StatusNotFound,
	service.KindMFANotEnabled:       http.StatusBadRequest,
	service.KindInvalidRequest:      http.StatusBadRequest,
}

// apiError converts a service error into the response written to the client.
func apiError(err error) *authsdk.APIError {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return authsdk.ErrStoreUnavailable
	}

	status, ok := kindStatus[svcErr.Kind]
	if !ok {
		return authsdk.ErrServerError
	}

	out := authsdk.NewAPIError(status, svcErr.Kind.Code(), svcErr.Message)
	switch svcErr.Kind {
	case service.KindMFARequired:
		out.MFAMethods = authsdk.ErrMFARequired.MFAMethods
	case service.KindStoreUnavailable:
		out.RetryAfter = authsdk.ErrStoreUnavailable.RetryAfter
	}
	return out
}

// writeServiceError logs err at a level matching its kind and writes it.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	out := apiError(err)
	switch {
	case out.StatusCode >= http.StatusInternalServerError:
		log.Error("request failed", "error", err)
	case out.StatusCode == http.StatusUnauthorized:
		log.Info("request rejected", "code", out.Code)
	default:
		log.Debug("request rejected", "code", out.Code, "error", err)
	}
	out.WriteError(w)
}

// writeDecodeError answers a body that could not be parsed.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Debug("invalid request body", "error", err)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		authsdk.NewAPIError(http.StatusRequestEntityTooLarge, authsdk.ErrorCodeInvalidRequest, "request body too large").WriteError(w)
		return
	}
	authsdk.ErrInvalidRequest.WriteError(w)
}
