package ledger

import (
	"errors"
	"fmt"
)

// Hata türleri. Handler katmanı bu türleri HTTP durum kodlarına çevirir;
// ledger paketi transport'tan habersizdir.
type ErrorKind string

const (
	KindProductNotFound   ErrorKind = "PRODUCT_NOT_FOUND"
	KindInvalidQuantity   ErrorKind = "INVALID_QUANTITY"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindWouldGoNegative   ErrorKind = "WOULD_GO_NEGATIVE"
	KindBatchNotFound     ErrorKind = "BATCH_NOT_FOUND"
	KindNotFound          ErrorKind = "NOT_FOUND"
)

// Error: kullanıcıya gösterilebilir mesaj + programatik tür.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind: sarmalanmış olsa bile hatanın türünü kontrol eder.
func IsKind(err error, kind ErrorKind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}
