package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
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
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// HTTPStatusOf возвращает HTTP статус для ошибки (500 для неизвестных).
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

var (
	// Ошибки поиска сущностей.
	ErrPaymentNotFound  = New(ErrCodeNotFound, "платёж не найден")
	ErrBufferNotFound   = New(ErrCodeNotFound, "запись об удержании выплаты не найдена")
	ErrDisputeNotFound  = New(ErrCodeNotFound, "спор не найден")
	ErrSettingsNotFound = New(ErrCodeNotFound, "настройки платформы не найдены")

	// Ошибки валидации расчётов.
	ErrInvalidRate   = New(ErrCodeValidation, "ставка комиссии должна быть в диапазоне от 0 до 1")
	ErrInvalidBudget = New(ErrCodeValidation, "бюджет работы должен быть положительным")

	// Ошибки жизненного цикла.
	ErrIllegalTransition     = New(ErrCodeConflict, "недопустимый переход статуса")
	ErrStatusConflict        = New(ErrCodeConflict, "статус изменился параллельно, повторите запрос")
	ErrDuplicateDispute      = New(ErrCodeConflict, "по этой работе уже открыт спор")
	ErrNotYetReleasable      = New(ErrCodeConflict, "период удержания ещё не истёк или заблокирован спором")
	ErrBufferAlreadyReleased = New(ErrCodeConflict, "выплата по этой работе уже освобождена")

	// Ошибки доступа.
	ErrUnauthorized = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden    = New(ErrCodeForbidden, "недостаточно прав")
)
