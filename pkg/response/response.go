package response

import "auditdesk/pkg/apperr"

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"` // stable machine code, e.g. "insufficient_role"
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error code
func Error(statusCode int, code string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      code,
	}
}

// FromError maps any error to the envelope using its apperr code and status.
// Unknown errors surface as internal_error without exposing store internals.
func FromError(err error) (int, Response) {
	status := apperr.StatusOf(err)
	return status, Error(status, apperr.CodeOf(err))
}
