package entity

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error - ошибка предметной области с видом (Code) из таксономии gRPC
type Error struct {
	Code    codes.Code
	Message string
	Err     error
}

var (
	ErrNotFound           = &Error{Code: codes.NotFound}
	ErrInvalidArgument    = &Error{Code: codes.InvalidArgument}
	ErrFailedPrecondition = &Error{Code: codes.FailedPrecondition}
	ErrUnavailable        = &Error{Code: codes.Unavailable}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по виду ошибки, поэтому errors.Is(err, ErrNotFound) работает
// для любой ошибки NotFound
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == "" && t.Err == nil
}

// GRPCStatus позволяет status.FromError распознать вид ошибки
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Error())
}

func NotFoundf(format string, args ...any) error {
	return &Error{Code: codes.NotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgumentf(format string, args ...any) error {
	return &Error{Code: codes.InvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func FailedPreconditionf(format string, args ...any) error {
	return &Error{Code: codes.FailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// Unavailable оборачивает ошибку недоступного хранилища
func Unavailable(err error, format string, args ...any) error {
	return &Error{Code: codes.Unavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf возвращает вид ошибки; для чужих ошибок - codes.Unknown
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return codes.Unknown
}
