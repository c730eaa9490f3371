package types

// SuccessEnvelope is the body of every successful console response. Notice,
// when set, is the success toast the UI shows.
type SuccessEnvelope struct {
	Data   any    `json:"data"`
	Notice string `json:"notice,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Redirect tells the UI where to navigate after an operation.
type Redirect struct {
	To string `json:"redirect"`
}
