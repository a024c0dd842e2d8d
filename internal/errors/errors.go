package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a splg error code.
type ErrorCode string

const (
	ErrMissingInput   ErrorCode = "MISSING_INPUT"    // 400
	ErrNumericOnly    ErrorCode = "NUMERIC_ONLY"     // 400
	ErrMissingCommas  ErrorCode = "MISSING_COMMAS"   // 400
	ErrDoubleSpace    ErrorCode = "DOUBLE_SPACE"     // 400
	ErrDoubleComma    ErrorCode = "DOUBLE_COMMA"     // 400
	ErrMultiWordEntry ErrorCode = "MULTI_WORD_ENTRY" // 400
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // 400
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrNoData         ErrorCode = "NO_DATA"          // 409
	ErrTooManyItems   ErrorCode = "TOO_MANY_ITEMS"   // 413
	ErrEmptyItemList  ErrorCode = "EMPTY_ITEM_LIST"  // 500 (caller broke the enumerate precondition)
	ErrInternal       ErrorCode = "INTERNAL"         // 500
)

// SplgError represents a structured error with code, status, and details.
type SplgError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SplgError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewMissingInput creates a 400 error for empty or whitespace-only input.
func NewMissingInput() *SplgError {
	return &SplgError{
		Code:    ErrMissingInput,
		Status:  400,
		Message: "please enter the languages",
	}
}

// NewNumericOnly creates a 400 error for input made of digits and separators only.
func NewNumericOnly() *SplgError {
	return &SplgError{
		Code:    ErrNumericOnly,
		Status:  400,
		Message: "only numbers detected; please enter language names",
	}
}

// NewMissingCommas creates a 400 error for space-separated input without commas.
func NewMissingCommas() *SplgError {
	return &SplgError{
		Code:    ErrMissingCommas,
		Status:  400,
		Message: "please separate languages using commas (e.g., English, French)",
	}
}

// NewDoubleSpace creates a 400 error when two consecutive spaces are found.
func NewDoubleSpace() *SplgError {
	return &SplgError{
		Code:    ErrDoubleSpace,
		Status:  400,
		Message: "multiple spaces found; did you forget a comma between languages?",
	}
}

// NewDoubleComma creates a 400 error when two consecutive commas are found.
func NewDoubleComma() *SplgError {
	return &SplgError{
		Code:    ErrDoubleComma,
		Status:  400,
		Message: "multiple commas found; please remove extra commas",
	}
}

// NewMultiWordEntry creates a 400 error for an entry holding more than one word.
func NewMultiWordEntry(entry string) *SplgError {
	return &SplgError{
		Code:    ErrMultiWordEntry,
		Status:  400,
		Message: fmt.Sprintf("detected multiple words in one entry: %q; you may have forgotten a comma", entry),
		Details: map[string]any{"entry": entry},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SplgError {
	return &SplgError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFileNotFound creates a 404 error for when a file path does not exist.
func NewFileNotFound(path string) *SplgError {
	return &SplgError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNoData creates a 409 error when a chart is requested before any sets exist.
func NewNoData() *SplgError {
	return &SplgError{
		Code:    ErrNoData,
		Status:  409,
		Message: "no sets generated yet; please generate sets first",
	}
}

// NewTooManyItems creates a 413 error when the item count exceeds the configured cap.
func NewTooManyItems(max, actual int) *SplgError {
	return &SplgError{
		Code:    ErrTooManyItems,
		Status:  413,
		Message: fmt.Sprintf("too many items: %d (max %d); %d items would produce too many sets", actual, max, actual),
		Details: map[string]any{"max_items": max, "actual_items": actual},
	}
}

// NewEmptyItemList creates a 500 error when enumeration is asked for an empty item list.
func NewEmptyItemList() *SplgError {
	return &SplgError{
		Code:    ErrEmptyItemList,
		Status:  500,
		Message: "cannot enumerate an empty item list",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *SplgError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &SplgError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is a SplgError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SplgError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// IsValidation reports whether err is one of the input validation rejections.
func IsValidation(err error) bool {
	var sErr *SplgError
	if !stderrors.As(err, &sErr) {
		return false
	}
	switch sErr.Code {
	case ErrMissingInput, ErrNumericOnly, ErrMissingCommas,
		ErrDoubleSpace, ErrDoubleComma, ErrMultiWordEntry:
		return true
	}
	return false
}
