package dto

// Response is the envelope every endpoint answers with. On success the
// payload sits under a key named after the entity, or "data".
type Response map[string]any

// OK wraps a payload under key.
func OK(key string, payload any) Response {
	if key == "" {
		key = "data"
	}
	return Response{"success": true, key: payload}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Fail builds a failed envelope.
func Fail(message, details string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message, Message: details}
}

// ListResponse is the payload of list endpoints.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// NewList builds a list payload. A nil slice is rendered as [].
func NewList[T any](items []T, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Limit: limit, Offset: offset, Count: len(items)}
}
