// Package errors provides structured error handling with error codes for simple-authz.
//
// This package standardizes error handling across all services with typed error
// codes, structured error details, and automatic HTTP status code mapping.
//
// Creating errors with codes:
//
//	import "github.com/tendant/simple-authz/pkg/errors"
//
//	err := errors.New(errors.ErrCodeForbidden, "platform admin access required")
//	err := errors.Newf(errors.ErrCodeInvalidFormat, "invalid user id: %s", id)
//	err := errors.Wrap(dbErr, errors.ErrCodeInternal, "failed to query profile")
//	err := errors.NotFound("user", userID)
//
// Handlers map errors to HTTP responses via the error's code:
//
//	status := errors.MapErrorCodeToHTTPStatus(errors.GetCode(err))
//
// Permission and authentication failures intentionally carry only the code and
// a short message so no storage-level detail leaks to callers.
package errors
