// server/internal/inventory/errors.go
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// Các lỗi nghiệp vụ chung, handler ánh xạ sang mã HTTP tương ứng.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrQuoteAlreadyExists = errors.New("quote already exists")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// ValidationError mang theo tên trường và lý do để trả về cho client.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientStockError liệt kê tất cả linh kiện không đủ tồn kho
// trong một lần rút bộ, để client hiển thị đầy đủ một lượt.
type InsufficientStockError struct {
	PieceRefs []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for pieces: %s", strings.Join(e.PieceRefs, ", "))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
