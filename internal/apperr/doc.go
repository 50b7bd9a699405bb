// Package apperr defines the closed set of errors a route handler may return
// to ask for a specific HTTP outcome.
//
// Each *Error carries exactly one Kind. The kind alone decides the status:
//
//	BadRequest     400  message as given
//	Unauthorized   401  message as given
//	Abort          the embedded, already built response
//	Other          500 "error handling request: <cause>" when the cause wraps
//	               another error, otherwise 400 "<cause>"
//	ServerError    500 "error handling request: <cause>"
//	Serialization  422 "<cause>"
//
// Values are created by handlers at the point of failure, travel through the
// router untouched as plain errors, and are turned into a response by
// package responder. Anything that is not an *Error is treated as an
// unexpected failure there.
package apperr
