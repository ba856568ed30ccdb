package client

import "errors"

// Failure classes for a telemetry fetch. Every error returned by
// FetchTelemetry wraps exactly one of these.
var (
	// ErrTransport covers unreachable hosts, DNS failures and timeouts.
	ErrTransport = errors.New("telemetry transport error")
	// ErrProtocol covers non-2xx responses and bodies that are not a JSON object.
	ErrProtocol = errors.New("telemetry protocol error")
	// ErrDataShape is returned in strict mode when expected fields are missing.
	ErrDataShape = errors.New("telemetry data-shape error")
)

// Classify returns a short label for err suitable for log attributes.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrDataShape):
		return "data-shape"
	default:
		return "unknown"
	}
}
