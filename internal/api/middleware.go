package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/http/response"
)

// EnvelopeVersion is the version stamped on every response body.
const EnvelopeVersion = response.Version

type (
	// APIEnvelope wraps successful responses and plain errors.
	APIEnvelope = response.Envelope //nolint:revive // Matches APIError naming
	// APIErrorEnvelope is the flat error body for coded errors.
	APIErrorEnvelope = response.ErrorEnvelope //nolint:revive // Matches APIError naming
)

// EnvelopeTransformer wraps every huma response body in the standard
// envelope, so handlers return bare data and errors.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	var apiErr *APIError
	if err, ok := v.(error); ok && errors.As(err, &apiErr) {
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	var domainErr *domainerrors.Error
	if err, ok := v.(error); ok && errors.As(err, &domainErr) {
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   domainErr.Message,
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, nil
	}

	if err, ok := v.(error); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	code, err := strconv.Atoi(status)
	if err == nil && code >= 400 {
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Data: v}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
