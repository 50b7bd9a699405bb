package reply

import "net/http"

// Stable, machine-readable error codes carried in the "code" field of every
// error body. Clients branch on these rather than on message text.
const (
	CodeBadRequest          = "bad_request"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodePayloadTooLarge     = "payload_too_large"
	CodeUnprocessableEntity = "unprocessable_entity"
	CodeRateLimited         = "too_many_requests"
	CodeInternal            = "internal_error"
	CodeUnknown             = "error"
)

// CodeForStatus maps an HTTP status to its stable error code. Every 5xx maps
// to internal_error.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	case http.StatusUnprocessableEntity:
		return CodeUnprocessableEntity
	case http.StatusTooManyRequests:
		return CodeRateLimited
	}
	if status >= http.StatusInternalServerError && status <= 599 {
		return CodeInternal
	}
	return CodeUnknown
}
