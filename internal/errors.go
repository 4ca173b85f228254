package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeAccessDenied    ErrorType = "ACCESS_DENIED"
	ErrorTypeInvalidState    ErrorType = "INVALID_STATE"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeEmptyLines       ErrorCode = "EMPTY_LINES"
	ErrCodeMissingProject   ErrorCode = "MISSING_PROJECT"
	ErrCodeDuplicateProject ErrorCode = "DUPLICATE_PROJECT_LINE"
	ErrCodeDayOutOfRange    ErrorCode = "DAY_VALUE_OUT_OF_RANGE"
	ErrCodeLineCapExceeded  ErrorCode = "LINE_CAP_EXCEEDED"
	ErrCodeDayCapExceeded   ErrorCode = "DAY_CAP_EXCEEDED"
	ErrCodeWeekCapExceeded  ErrorCode = "WEEK_CAP_EXCEEDED"
	ErrCodeMissingDayValue  ErrorCode = "MISSING_DAY_VALUE"
	ErrCodeWeekNotAllowed   ErrorCode = "WEEK_NOT_ALLOWED"

	ErrCodeTimesheetNotFound ErrorCode = "TIMESHEET_NOT_FOUND"
	ErrCodeProjectNotFound   ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"

	ErrCodeAccessDenied       ErrorCode = "ACCESS_DENIED"
	ErrCodeNotOwner           ErrorCode = "NOT_OWNER"
	ErrCodeNotEditable        ErrorCode = "NOT_EDITABLE"
	ErrCodeAlreadyDecided     ErrorCode = "ALREADY_DECIDED"
	ErrCodePMDecisionRequired ErrorCode = "PM_DECISION_REQUIRED"
	ErrCodeNotDecidable       ErrorCode = "NOT_DECIDABLE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeEmailExists        ErrorCode = "EMAIL_EXISTS"
	ErrCodeCodeExists         ErrorCode = "PROJECT_CODE_EXISTS"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewAccessDeniedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeAccessDenied,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInvalidStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrTimesheetNotFound = NewNotFoundError("timesheet not found", ErrCodeTimesheetNotFound)
	ErrProjectNotFound   = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrUserNotFound      = NewNotFoundError("user not found", ErrCodeUserNotFound)

	ErrAccessDenied = NewAccessDeniedError("access denied", ErrCodeAccessDenied)
	ErrNotOwner     = NewAccessDeniedError("timesheet belongs to another employee", ErrCodeNotOwner)

	ErrNotEditable        = NewInvalidStateError("only pending timesheets can be modified", ErrCodeNotEditable)
	ErrAlreadyDecided     = NewInvalidStateError("decision already recorded for this approval step", ErrCodeAlreadyDecided)
	ErrPMDecisionRequired = NewInvalidStateError("PM must approve before FM can act", ErrCodePMDecisionRequired)
	ErrNotDecidable       = NewInvalidStateError("timesheet is not awaiting this decision", ErrCodeNotDecidable)

	ErrInvalidCredentials = NewUnauthenticatedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthenticatedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthenticatedError("token has expired", ErrCodeTokenExpired)
	ErrUnauthenticated    = NewUnauthenticatedError("authentication required", ErrCodeValidationFailed)

	ErrEmailExists       = NewConflictError("email already exists", ErrCodeEmailExists)
	ErrProjectCodeExists = NewConflictError("project code already exists", ErrCodeCodeExists)
)

// ValidationError is a single field-level failure; ValidationErrors groups
// them as the Details payload of a VALIDATION_ERROR response.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{Errors: []ValidationError{
			{Field: field, Message: message, Code: string(code)},
		}},
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
