package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeNotFound             Code = "NOT_FOUND"
	CodeUnavailable          Code = "UNAVAILABLE"
	CodeInternal             Code = "INTERNAL"
	CodeConfigurationMissing Code = "CONFIGURATION_MISSING"
)

var statusByCode = map[Code]int{
	CodeInvalidArgument:      http.StatusBadRequest,
	CodeNotFound:             http.StatusNotFound,
	CodeUnavailable:          http.StatusServiceUnavailable,
	CodeConfigurationMissing: http.StatusUnprocessableEntity,
}

// AppError is the unified error contract across layers.
type AppError struct {
	Code    Code
	Op      string // operation name, ex: "JobService.Create"
	Message string // safe message
	Err     error  // wrapped error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "error"
	}
}

func (e *AppError) Unwrap() error { return e.Err }

func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// HTTPStatus maps an error to a response status. Unknown codes and plain
// errors are 500, except anything wrapping ErrNotFound.
func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		if st, ok := statusByCode[ae.Code]; ok {
			return st
		}
		return http.StatusInternalServerError
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

var (
	ErrNotFound = errors.New("not found")
	// no stored configuration and no built-in default for a prompt type
	ErrConfigurationMissing = errors.New("configuration missing")
)
