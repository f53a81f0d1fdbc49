// Package usecase implements the business logic for price alerts.
package usecase

import "errors"

var (
	// ErrInvalidAlert is returned when the alert type, condition or value is out of range.
	ErrInvalidAlert = errors.New("invalid alert")

	// ErrAlertNotFound is returned when the alert does not exist or belongs to another user.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrAssetNotFound is returned when the alert targets a symbol that is not stored.
	ErrAssetNotFound = errors.New("asset not found")
)
