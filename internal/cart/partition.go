package cart

import "time"

// PartitionByDate splits bookings into the dashboard's upcoming and past lists.
//
// Upcoming: status confirmed and date on or after asOf's calendar day.
// Past: date before asOf's calendar day, or status completed.
//
// A cancelled booking dated today or later lands in neither list. Dates that do
// not parse only ever match the completed rule. Input order is preserved.
func PartitionByDate(bookings []Booking, asOf time.Time) (upcoming, past []Booking) {
	today := truncateToDay(asOf)

	for _, b := range bookings {
		date, err := time.ParseInLocation(DateLayout, b.Date, asOf.Location())
		valid := err == nil

		if valid && !date.Before(today) && b.Status == StatusConfirmed {
			upcoming = append(upcoming, b)
		}
		if (valid && date.Before(today)) || b.Status == StatusCompleted {
			past = append(past, b)
		}
	}
	return upcoming, past
}

// Summary counts a user's bookings the way the dashboard header shows them.
type Summary struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Past     int `json:"past"`
}

// Summarize partitions bookings at asOf and counts the results.
func Summarize(bookings []Booking, asOf time.Time) Summary {
	upcoming, past := PartitionByDate(bookings, asOf)
	return Summary{
		Total:    len(bookings),
		Upcoming: len(upcoming),
		Past:     len(past),
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
