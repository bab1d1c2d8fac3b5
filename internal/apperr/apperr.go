// Package apperr defines the error kinds surfaced to API callers: NotFound for
// missing entities and Business for violated domain rules. Any other error is
// an infrastructure failure and is passed through unchanged.
package apperr

import (
	"errors"
	"fmt"
)

// Reason is a symbolic business error code. The boundary layer formats it.
type Reason string

// Business reasons.
const (
	AddressNotAssociated      Reason = "address_not_associated"
	FileExtensionNotSupported Reason = "file_extension_not_supported"
	FileSizeExceeded          Reason = "file_size_exceeded"
	InvalidPriceRange         Reason = "invalid_price_range"
	InvalidLikesOrder         Reason = "invalid_likes_order"
	InvalidPrice              Reason = "invalid_price"
	InvalidRoyalty            Reason = "invalid_royalty"
	NameTooLong               Reason = "name_too_long"
	InvalidAddress            Reason = "invalid_address"
	ItemAlreadyListed         Reason = "item_already_listed"
	ItemNotListed             Reason = "item_not_listed"
	ItemNotActivated          Reason = "item_not_activated"
	ItemStateChanged          Reason = "item_state_changed"
	NotItemOwner              Reason = "not_item_owner"
	BuyerIsOwner              Reason = "buyer_is_owner"
	ItemAlreadyLiked          Reason = "item_already_liked"
	PinNotRecoverable         Reason = "pin_not_recoverable"
)

// NotFoundError reports that an entity does not exist under the given key.
type NotFoundError struct {
	Entity string
	Key    string
	Value  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("The %s with %s %s does not exist", e.Entity, e.Key, e.Value)
}

// NotFound returns a NotFoundError for entity looked up by key = value.
func NotFound(entity, key, value string) error {
	return &NotFoundError{Entity: entity, Key: key, Value: value}
}

// BusinessError reports a violated domain rule.
type BusinessError struct {
	Reason Reason
}

func (e *BusinessError) Error() string {
	return string(e.Reason)
}

// Business returns a BusinessError carrying reason.
func Business(reason Reason) error {
	return &BusinessError{Reason: reason}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsBusiness reports whether err wraps a BusinessError.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// ReasonOf returns the business reason wrapped by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Reason, true
	}
	return "", false
}
