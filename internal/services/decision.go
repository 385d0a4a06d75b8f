package services

import (
	"errors"

	"spesa/internal/core"
)

// Outcome is the result of a destructive request.
type Outcome string

const (
	Done                 Outcome = "done"
	ConfirmationRequired Outcome = "confirmation_required"
)

// Decision is returned instead of prompting the user. When the outcome is
// ConfirmationRequired nothing changed; the caller may ask and retry with
// confirmed set.
type Decision struct {
	Outcome          Outcome `json:"outcome"`
	Message          string  `json:"message"`
	AffectedExpenses int     `json:"affectedExpenses,omitempty"`
	AffectedMappings int     `json:"affectedMappings,omitempty"`
}

// NeedsConfirmation reports whether the caller must confirm and retry.
func (d Decision) NeedsConfirmation() bool {
	return d.Outcome == ConfirmationRequired
}

// IsValidation reports whether err was caused by bad user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrEmptyItem,
		core.ErrItemTooLong,
		core.ErrEmptyName,
		core.ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err refers to a missing expense or category.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrExpenseNotFound) || errors.Is(err, core.ErrCategoryNotFound)
}
