package models

import "errors"

// Error classes shared by the warm-up packages. Wrap them with fmt.Errorf and
// test with errors.Is.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrElementNotFound = errors.New("element not found")
	ErrActionDenied    = errors.New("action denied")
	ErrNavigation      = errors.New("navigation failure")
	ErrInteraction     = errors.New("interaction failure")
)
