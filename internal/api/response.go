// Package api holds the response bodies shared by every HTTP handler.
package api

// ErrorResponse is the body of every 4xx/5xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse acknowledges a mutation that has no resource to return.
type SuccessResponse struct {
	Success bool `json:"success"`
}
