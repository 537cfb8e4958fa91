package transport

import "encoding/json"

// Envelope wraps error payloads and the few responses that are not bare resources.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// ErrorMessage returns the error text of an error envelope.
func (e Envelope) ErrorMessage() string {
	if msg, ok := e.Error.(string); ok {
		return msg
	}
	return ""
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// SessionResponse is returned by sign-in.
type SessionResponse struct {
	SessionID   string `json:"session_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}
