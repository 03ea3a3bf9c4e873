package internal

import "errors"

// Error taxonomy shared by the server handlers and the client. Transport
// failures never surface through these; they feed the reconnect machinery
// instead.
var (
	// ErrTransportUnavailable is returned for a send attempted while no
	// connection is open. Callers treat it as a local no-op.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrPayloadTooLarge is returned when an upload exceeds the file size cap.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnauthenticated is returned when the auth collaborator rejects a
	// request or connection attempt.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTransferFailed covers generic upload/download failures.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrValidationFailed covers empty text and malformed input. Absorbed
	// silently at the point of input.
	ErrValidationFailed = errors.New("validation failed")
)
