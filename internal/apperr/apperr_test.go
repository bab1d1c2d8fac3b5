package apperr

import (
	"fmt"
	"testing"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("item", "id", "123")
	if err.Error() != "The item with id 123 does not exist" {
		t.Errorf("unexpected message %q", err.Error())
	}

	wrapped := fmt.Errorf("listing item: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("expected wrapped error to be NotFound")
	}
	if IsBusiness(wrapped) {
		t.Error("NotFound should not be Business")
	}
}

func TestBusinessReason(t *testing.T) {
	err := fmt.Errorf("activating: %w", Business(AddressNotAssociated))
	if !IsBusiness(err) {
		t.Fatal("expected Business error")
	}
	reason, ok := ReasonOf(err)
	if !ok || reason != AddressNotAssociated {
		t.Errorf("expected reason %q, got %q", AddressNotAssociated, reason)
	}

	if _, ok := ReasonOf(fmt.Errorf("disk full")); ok {
		t.Error("plain errors carry no reason")
	}
}
