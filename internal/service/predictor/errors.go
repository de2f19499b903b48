package predictor

import (
	"errors"

	"StockDash/internal/domain/service"
)

// FailureMessage is the text every TransportError reports.
const FailureMessage = service.PredictionFailureMessage

// ErrMalformedResponse marks a 2xx body that does not match the wire contract.
var ErrMalformedResponse = errors.New("malformed prediction response")

// TransportError is returned for every failed prediction call. Error() is the
// generic user-facing message; the underlying cause is only reachable via Unwrap.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string { return FailureMessage }

func (e *TransportError) Unwrap() error { return e.Cause }

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
