/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package errcode defines the error taxonomy shared by the issuer credential exchange packages.
//
// Every operation that fails returns an *Error carrying a Code, the name of the operation which raised it
// and a human readable message derived from the code.
package errcode

import (
	"errors"
	"fmt"
)

// Code is the error code of an exchange operation failure.
type Code int32

// Error codes. The numeric values are part of the wire contract and must not change.
const (
	// Success is the code reported by operations which did not fail.
	Success Code = 0
	// UnknownError is returned for operations addressed to a reference which never had a handle.
	UnknownError Code = 1001
	// InvalidConnectionHandle is returned when the connection argument is absent or not established.
	InvalidConnectionHandle Code = 1003
	// NotReady is returned when an operation is attempted before its precondition state was reached.
	NotReady Code = 1005
	// InvalidOption is returned when a required creation field is missing.
	InvalidOption Code = 1007
	// InvalidIssuerCredentialHandle is returned when the issuer credential handle is not in the registry.
	InvalidIssuerCredentialHandle Code = 1015
	// InvalidJSON is returned for malformed structured data (attributes or serialized exchanges).
	InvalidJSON Code = 1016
)

// nolint:gochecknoglobals
var messages = map[Code]string{
	Success:                       "Success",
	UnknownError:                  "Unknown Error",
	InvalidConnectionHandle:       "Invalid Connection Handle",
	NotReady:                      "Object not ready for specified action",
	InvalidOption:                 "Invalid Option",
	InvalidIssuerCredentialHandle: "Invalid Issuer Credential Handle",
	InvalidJSON:                   "Invalid JSON string",
}

// Message returns the canonical text of the code.
func (c Code) Message() string {
	if msg, ok := messages[c]; ok {
		return msg
	}

	return fmt.Sprintf("Unrecognized error code %d", int32(c))
}

// String implements fmt.Stringer.
func (c Code) String() string {
	return c.Message()
}

// Error is an operation failure tagged with its code and the operation name.
type Error struct {
	code Code
	op   string
	err  error
}

// New returns a new Error. The cause is optional and is kept for errors.Is/errors.As.
func New(code Code, op string, cause error) *Error {
	return &Error{code: code, op: op, err: cause}
}

// Newf returns a new Error with a formatted cause.
func Newf(code Code, op, format string, args ...interface{}) *Error {
	return New(code, op, fmt.Errorf(format, args...))
}

// Wrap tags err with the operation name. If err already carries an *Error its code is kept,
// otherwise the given code is used. Wrap returns nil for a nil err.
func Wrap(code Code, op string, err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{code: e.code, op: op, err: err}
	}

	return &Error{code: code, op: op, err: err}
}

// Code returns the error code.
func (e *Error) Code() Code {
	return e.code
}

// Op returns the name of the operation which raised the error.
func (e *Error) Op() string {
	return e.op
}

// Message returns the canonical text of the error code.
func (e *Error) Message() string {
	return e.code.Message()
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.op, e.Message())
	}

	return fmt.Sprintf("%s: %s: %s", e.op, e.Message(), e.err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.code == e.code && (t.op == "" || t.op == e.op)
}

// CodeOf returns the code carried by err, Success for nil and UnknownError for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}

	var e *Error
	if errors.As(err, &e) {
		return e.code
	}

	return UnknownError
}

// OpOf returns the operation name carried by err, or an empty string.
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.op
	}

	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
