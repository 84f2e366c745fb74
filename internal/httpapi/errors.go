package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shamank/artpass-sdk-go/pkg/config"
	"github.com/shamank/artpass-sdk-go/pkg/discovery"
	"github.com/shamank/artpass-sdk-go/pkg/indexer"
	"github.com/shamank/artpass-sdk-go/pkg/mint"
	"github.com/shamank/artpass-sdk-go/pkg/mintstore"
	"github.com/shamank/artpass-sdk-go/pkg/sdk"
	"github.com/shamank/artpass-sdk-go/pkg/storage"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
	"go.uber.org/zap"
)

// errBadRequest marks malformed HTTP input.
var errBadRequest = errors.New("bad request")

// statusFor maps the registry error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var verrs validation.Errors
	var upstream *indexer.UpstreamError
	switch {
	case errors.Is(err, errBadRequest),
		errors.As(err, &verrs),
		errors.Is(err, mint.ErrInvalidRequest),
		errors.Is(err, storage.ErrInvalidPin),
		errors.Is(err, storage.ErrInvalidCID),
		errors.Is(err, unit.ErrInvalidUnit):
		return http.StatusBadRequest
	case errors.Is(err, indexer.ErrNotFound),
		errors.Is(err, mintstore.ErrNotFound),
		errors.Is(err, discovery.ErrNotRecognized):
		return http.StatusNotFound
	case errors.Is(err, config.ErrMissingCredential),
		errors.Is(err, sdk.ErrWalletRequired):
		return http.StatusInternalServerError
	case errors.As(err, &upstream),
		errors.Is(err, storage.ErrPinFailed),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("request error",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
