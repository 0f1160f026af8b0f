package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrCodeNotFound                ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized            ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden               ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest              ErrorCode = "BAD_REQUEST"
	ErrCodeInvalidState            ErrorCode = "INVALID_STATE"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation              ErrorCode = "VALIDATION_ERROR"
	ErrCodeVerificationFailed      ErrorCode = "VERIFICATION_FAILED"
	ErrCodeVerificationUnavailable ErrorCode = "VERIFICATION_UNAVAILABLE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeInvalidState:
		return http.StatusConflict
	case ErrCodeVerificationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeVerificationUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// VerificationFailedError несёт перечень непройденных проверок, чтобы сборщик
// знал, какое фото переснять.
type VerificationFailedError struct {
	*AppError
	FailedChecks []string
	Confidence   float64
}

// Unwrap отдаёт вложенный AppError, чтобы errors.As находил код ошибки.
func (e *VerificationFailedError) Unwrap() error {
	return e.AppError
}

// NewVerificationFailed создаёт ошибку с перечнем непройденных проверок.
func NewVerificationFailed(failedChecks []string, confidence float64) *VerificationFailedError {
	return &VerificationFailedError{
		AppError: New(ErrCodeVerificationFailed,
			fmt.Sprintf("проверка не пройдена: %s", strings.Join(failedChecks, ", "))),
		FailedChecks: failedChecks,
		Confidence:   confidence,
	}
}

// NewVerificationUnavailable создаёт ошибку недоступности AI проверки.
// В отличие от VERIFICATION_FAILED запрос безопасно повторить.
func NewVerificationUnavailable(cause error) *AppError {
	return Wrap(cause, ErrCodeVerificationUnavailable, "сервис проверки изображений временно недоступен, повторите попытку")
}

// IsRetryable сообщает, безопасно ли повторить операцию без изменений.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeVerificationUnavailable
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsInvalidState(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeInvalidState
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

var (
	ErrReportNotFound = New(ErrCodeNotFound, "заявка не найдена")
	ErrUserNotFound   = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized   = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden      = New(ErrCodeForbidden, "недостаточно прав")
)
