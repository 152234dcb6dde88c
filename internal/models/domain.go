package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// AvatarMaxBytes is the largest avatar upload accepted, in bytes.
	AvatarMaxBytes = 300 * 1024

	DefaultAvatarPage     = 0
	DefaultAvatarPageSize = 5

	LastStudentsLimit = 5

	AgeMin = 0
	AgeMax = 150

	NameMaxLength  = 255
	ColorMaxLength = 64
)

// NoFacultiesName is reported as the longest faculty name when none exist.
const NoFacultiesName = "No faculties"

func IsValidAge(value int) bool {
	return value >= AgeMin && value <= AgeMax
}

func ParseName(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(value) > NameMaxLength {
		return "", fmt.Errorf("name must be at most %d characters", NameMaxLength)
	}
	return value, nil
}

func ParseColor(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("color is required")
	}
	if utf8.RuneCountInString(value) > ColorMaxLength {
		return "", fmt.Errorf("color must be at most %d characters", ColorMaxLength)
	}
	return value, nil
}

// AgeRange is an inclusive age interval.
type AgeRange struct {
	Min int
	Max int
}

func (r AgeRange) Validate() error {
	if !IsValidAge(r.Min) || !IsValidAge(r.Max) {
		return fmt.Errorf("age must be between %d and %d", AgeMin, AgeMax)
	}
	if r.Min > r.Max {
		return fmt.Errorf("min_age must not exceed max_age")
	}
	return nil
}
