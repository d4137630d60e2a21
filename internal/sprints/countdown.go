package sprints

import (
	"math"
	"time"

	"github.com/jinzhu/now"

	"engboard/internal/models"
)

// Urgency flags how close an active sprint is to its deadline.
type Urgency string

const (
	UrgencyNone    Urgency = "NONE"
	UrgencyUrgent  Urgency = "URGENT"
	UrgencyOverdue Urgency = "OVERDUE"
)

// UrgentWithin is the inclusive day window that raises the urgent banner.
const UrgentWithin = 3

// Countdown is the deadline view of one sprint.
type Countdown struct {
	SprintID      string  `json:"sprint_id"`
	EndDate       string  `json:"end_date"`
	DaysRemaining int     `json:"days_remaining"`
	Urgency       Urgency `json:"urgency"`
}

// DaysRemaining returns the signed number of calendar days between today and
// endDate: positive days left, zero when due today, negative when overdue.
// The end date is read in the location of today so the day boundary is the
// caller's local midnight.
func DaysRemaining(endDate string, today time.Time) (int, error) {
	end, err := models.ParseDateIn(endDate, today.Location())
	if err != nil {
		return 0, err
	}
	from := now.With(today).BeginningOfDay()
	to := now.With(end).BeginningOfDay()
	// Days across a DST switch are 23 or 25 hours long.
	return int(math.Round(to.Sub(from).Hours() / 24)), nil
}

// Classify maps a sprint status and its remaining days to an urgency flag.
// Only ACTIVE sprints are ever urgent or overdue.
func Classify(status models.SprintStatus, days int) Urgency {
	if status != models.SprintActive {
		return UrgencyNone
	}
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= UrgentWithin:
		return UrgencyUrgent
	default:
		return UrgencyNone
	}
}

// CountdownFor computes the countdown of s as of today.
func CountdownFor(s models.Sprint, today time.Time) (Countdown, error) {
	days, err := DaysRemaining(s.EndDate, today)
	if err != nil {
		return Countdown{}, err
	}
	return Countdown{
		SprintID:      s.ID,
		EndDate:       s.EndDate,
		DaysRemaining: days,
		Urgency:       Classify(s.Status, days),
	}, nil
}
