package models

import (
	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("conflict")

	// UnprocessableError is rendered with the http status code 422
	UnprocessableError = errors.New("unprocessable data")

	// UnavailableError is rendered with the http status code 503
	UnavailableError = errors.New("service unavailable")

	// InternalError is rendered with the http status code 500
	InternalError = errors.New("internal error")
)

// Relational store errors
var (
	ErrConnection = errors.Wrap(UnavailableError, "data store unreachable")
	ErrSchema     = errors.Wrap(InternalError, "data store schema mismatch")
)

// Training and scoring errors
var (
	ErrInsufficientData  = errors.Wrap(UnprocessableError, "insufficient data for training")
	ErrClassImbalance    = errors.Wrap(UnprocessableError, "training set contains a single label class")
	ErrDegenerateFeature = errors.Wrap(UnprocessableError, "feature has zero standard deviation")
	ErrNotTrained        = errors.Wrap(ConflictError, "no trained model available, train the model first")
	ErrFeatureMismatch   = errors.Wrap(BadParameterError, "feature vector does not match model features")
)

// ErrorKind returns a short label for err, used as a metrics label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrClassImbalance):
		return "class_imbalance"
	case errors.Is(err, ErrDegenerateFeature):
		return "degenerate_feature"
	case errors.Is(err, ErrNotTrained):
		return "not_trained"
	case errors.Is(err, ErrFeatureMismatch):
		return "feature_mismatch"
	case errors.Is(err, BadParameterError):
		return "bad_parameter"
	default:
		return "unknown"
	}
}
