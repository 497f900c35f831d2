// Package numbering allocates human readable ticket numbers of the form
// PREFIX-YYYYMMDD-NNN, sequential per prefix and calendar day.
package numbering

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "20060102"
	// MaxSequence is the largest suffix that still fits three digits.
	MaxSequence = 999
)

var (
	// ErrCorruptSuffix is returned when a stored ticket number has a non-numeric suffix.
	ErrCorruptSuffix = errors.New("ticket number suffix is not numeric")
	// ErrSequenceExhausted is returned once a prefix used every number of a day.
	ErrSequenceExhausted = errors.New("daily ticket sequence exhausted")

	numberPattern = regexp.MustCompile(`^(SR|VR)-(\d{8})-(\d{3})$`)
)

// Base returns the "PREFIX-YYYYMMDD-" stem shared by all numbers of a day.
func Base(prefix string, day time.Time) string {
	return prefix + "-" + day.Format(dateLayout) + "-"
}

// Format renders a ticket number.
func Format(prefix string, day time.Time, seq int) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("%w: %s sequence %d", ErrSequenceExhausted, Base(prefix, day), seq)
	}
	return fmt.Sprintf("%s%03d", Base(prefix, day), seq), nil
}

// Valid reports whether number matches the ticket number format.
func Valid(number string) bool {
	return numberPattern.MatchString(number)
}

// NextAfter computes the sequence following the largest stored number for base.
// An empty maxNumber means nothing was issued yet.
func NextAfter(base, maxNumber string) (int, error) {
	if maxNumber == "" {
		return 1, nil
	}
	if !strings.HasPrefix(maxNumber, base) {
		return 0, fmt.Errorf("ticket number %q does not start with %q", maxNumber, base)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(maxNumber, base))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrCorruptSuffix, maxNumber)
	}
	return n + 1, nil
}
