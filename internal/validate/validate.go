package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	MinRating = 0
	MaxRating = 5
	MaxBPM    = 400
)

var (
	ErrInvalidEmail   = errors.New("Email must be valid, e.g. username@domain.com")
	ErrNoGenres       = errors.New("At least one genre is required")
	ErrEmptyGenre     = errors.New("All genres must be non-empty")
	ErrRoleRequired   = errors.New("User Role must be selected")
	ErrDeadlinePassed = errors.New("Deadline must be in the future")
)

// Message converts a validation error into the message shown next to a form field. A nil error gives the empty
// string, which the form engine reads as valid.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Required fails when value is empty after trimming spaces. label names the field in the message.
func Required(value, label string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", label)
	}
	return nil
}

func Email(email string) error {
	if len(email) == 0 {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return ErrInvalidEmail
	}
	return nil
}

func Genres(genres []string) error {
	if len(genres) == 0 {
		return ErrNoGenres
	}
	for _, g := range genres {
		if strings.TrimSpace(g) == "" {
			return ErrEmptyGenre
		}
	}
	return nil
}

// BPM accepts whole, positive beats per minute values.
func BPM(bpm int) error {
	switch {
	case bpm == 0:
		return errors.New("BPM is required")
	case bpm < 0:
		return errors.New("BPM must be a positive number")
	case bpm > MaxBPM:
		return fmt.Errorf("BPM too high; max %d", MaxBPM)
	}
	return nil
}

func Deadline(deadline, now time.Time) error {
	if deadline.IsZero() {
		return errors.New("Deadline is required")
	}
	if !deadline.After(now) {
		return ErrDeadlinePassed
	}
	return nil
}

func Rating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("Rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}
