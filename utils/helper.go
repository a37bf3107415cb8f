package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// StringToUUIDPtr converts a string to UUID pointer
func StringToUUIDPtr(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &u
}

// StringPtr returns a pointer to the string value
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the int value
func IntPtr(i int) *int {
	return &i
}

// FormatDocumentNumber formats a per-company sequence into a human-readable
// document number, e.g. INV-000042.
func FormatDocumentNumber(prefix string, sequence int) string {
	return fmt.Sprintf("%s-%06d", prefix, sequence)
}
