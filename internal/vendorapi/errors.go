package vendorapi

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

// Kind классифицирует ошибки взаимодействия с API вендора.
type Kind string

const (
	// KindTransport — сетевая ошибка или недоступность сервера вендора.
	KindTransport Kind = "transport"
	// KindUnauthorized — вендор отклонил учётные данные или токен.
	KindUnauthorized Kind = "unauthorized"
	// KindMalformedResponse — ответ вендора не соответствует ожидаемой форме.
	KindMalformedResponse Kind = "malformed_response"
	// KindValidation — локальная ошибка валидации, сетевой вызов не выполнялся.
	KindValidation Kind = "validation"
	// KindVendorRejected — вендор отклонил операцию с бизнес-ошибкой.
	KindVendorRejected Kind = "vendor_rejected"
)

// Error описывает ошибку вызова API вендора с классификацией по виду.
// Для KindVendorRejected поля Code и Message содержат ответ вендора.
type Error struct {
	Kind    Kind
	Vendor  model.VendorType
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s [%s]: %s", e.Vendor, e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Vendor, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind сообщает, относится ли ошибка к указанному виду.
func IsKind(err error, kind Kind) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Kind == kind
}

func newError(vendor model.VendorType, kind Kind, message string) *Error {
	return &Error{Kind: kind, Vendor: vendor, Message: message}
}

func wrapError(vendor model.VendorType, kind Kind, err error) *Error {
	return &Error{Kind: kind, Vendor: vendor, Err: err}
}
