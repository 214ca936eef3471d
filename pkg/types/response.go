package types

// SuccessEnvelope is the JSON shape of every successful response.
type SuccessEnvelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// APIError is one entry in an error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the JSON shape of every failed response.
type ErrorEnvelope struct {
	Message string     `json:"message"`
	Errors  []APIError `json:"errors"`
}
