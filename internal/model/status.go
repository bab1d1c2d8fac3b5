package model

import "github.com/erazemk/mintmarket/internal/apperr"

// ItemStatus is the lifecycle state of an item.
type ItemStatus string

// Item statuses.
const (
	StatusDraft     ItemStatus = "draft"
	StatusNotListed ItemStatus = "not_listed"
	StatusListed    ItemStatus = "listed"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusNotListed, StatusListed:
		return true
	}
	return false
}

// Operation is a lifecycle operation applied to an existing item.
type Operation string

// Lifecycle operations.
const (
	OpActivate Operation = "activate"
	OpList     Operation = "list"
	OpDelist   Operation = "delist"
	OpBuy      Operation = "buy"
)

// TransactionType returns the history entry type recorded for op.
func (op Operation) TransactionType() TransactionType {
	switch op {
	case OpActivate:
		return TransactionActivated
	case OpList:
		return TransactionListed
	case OpDelist:
		return TransactionDelisted
	case OpBuy:
		return TransactionSold
	}
	return ""
}

// InitialStatus is the status an item is created with.
func InitialStatus(draft bool) ItemStatus {
	if draft {
		return StatusDraft
	}
	return StatusNotListed
}

// Transition validates applying op to an item in state from and returns the
// resulting state. Every lifecycle operation goes through here.
//
//	draft      --activate--> not_listed
//	not_listed --activate--> not_listed
//	not_listed --list------> listed
//	listed     --delist----> not_listed
//	listed     --buy-------> not_listed
func Transition(from ItemStatus, op Operation) (ItemStatus, error) {
	switch op {
	case OpActivate:
		switch from {
		case StatusDraft, StatusNotListed:
			return StatusNotListed, nil
		case StatusListed:
			return "", apperr.Business(apperr.ItemAlreadyListed)
		}
	case OpList:
		switch from {
		case StatusNotListed:
			return StatusListed, nil
		case StatusListed:
			return "", apperr.Business(apperr.ItemAlreadyListed)
		case StatusDraft:
			return "", apperr.Business(apperr.ItemNotActivated)
		}
	case OpDelist, OpBuy:
		if from == StatusListed {
			return StatusNotListed, nil
		}
		if from.Valid() {
			return "", apperr.Business(apperr.ItemNotListed)
		}
	}
	return "", apperr.Business(apperr.ItemStateChanged)
}
