package borrows

import (
	"errors"
	"fmt"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// 貸出まわりのエラーコード（必要に応じて追加）
const (
	ErrCodeBookNotFound       = "BOOK_NOT_FOUND"
	ErrCodeBookNotAvailable   = "BOOK_NOT_AVAILABLE"
	ErrCodeInsufficientCopies = "INSUFFICIENT_COPIES"
	ErrCodeInvalidArgument    = "INVALID_ARGUMENT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL"
)

func NewBookNotFoundError() error {
	return &DomainError{
		Code:    ErrCodeBookNotFound,
		Message: "Book not found",
	}
}

func NewBookNotAvailableError() error {
	return &DomainError{
		Code:    ErrCodeBookNotAvailable,
		Message: "Book is not available",
	}
}

func NewInsufficientCopiesError() error {
	return &DomainError{
		Code:    ErrCodeInsufficientCopies,
		Message: "Not enough copies available",
	}
}

func NewInvalidArgumentError(msg string) error {
	return &DomainError{
		Code:    ErrCodeInvalidArgument,
		Message: msg,
	}
}

func ToHTTPStatus(err error) int {
	var de *DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case ErrCodeBookNotFound, ErrCodeNotFound:
			return 404
		case ErrCodeBookNotAvailable, ErrCodeInsufficientCopies, ErrCodeInvalidArgument:
			return 400
		default:
			return 500
		}
	}
	return 500
}
