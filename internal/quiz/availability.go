package quiz

import (
	"errors"
	"time"
)

// ErrInvalidWindow rejects a quiz whose availability window is inverted.
// Checked at create/edit time; the predicates below stay permissive.
var ErrInvalidWindow = errors.New("available_from is after available_until")

// ValidateWindow checks that from <= until when both bounds are set.
func ValidateWindow(from, until *time.Time) error {
	if from != nil && until != nil && from.After(*until) {
		return ErrInvalidWindow
	}
	return nil
}

// IsAvailable reports whether students can take the quiz at now. Both window
// bounds are inclusive; an absent bound is unbounded. Unpublished quizzes
// are never available.
func (q *Quiz) IsAvailable(now time.Time) bool {
	return q.Published &&
		(q.AvailableFrom == nil || !now.Before(*q.AvailableFrom)) &&
		(q.AvailableUntil == nil || !now.After(*q.AvailableUntil))
}

// IsUpcoming reports whether the quiz is published but not yet open.
func (q *Quiz) IsUpcoming(now time.Time) bool {
	return q.Published && q.AvailableFrom != nil && now.Before(*q.AvailableFrom)
}

// IsExpired reports whether the quiz's availability period has ended.
func (q *Quiz) IsExpired(now time.Time) bool {
	return q.Published && q.AvailableUntil != nil && now.After(*q.AvailableUntil)
}
