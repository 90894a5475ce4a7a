package handler

import "time"

// Response is the standard envelope for the operational endpoints.
// /metrics is exempt and uses the Prometheus text format.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	r := &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
	if s, ok := details.(string); !ok || s != "" {
		r.Details = details
	}
	return r
}

// HealthStatus is the body of /health and /ready.
type HealthStatus struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ConfigStatus describes the snapshot currently being served.
type ConfigStatus struct {
	Hash       string    `json:"hash"`
	Source     string    `json:"source"`
	ResolvedAt time.Time `json:"resolved_at"`
}
