package types

// Envelope wraps every successful API payload. Clients and tests decode it
// with the concrete payload type.
type Envelope[T any] struct {
	Data T `json:"data"`
}

type SuccessEnvelope = Envelope[any]

// APIError is the public half of a failure; diagnostics stay in the logs.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
