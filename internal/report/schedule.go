package report

import "time"

// NextBusinessDay returns the next calendar day after now, skipped forward
// over Saturday and Sunday. Used for the meeting deadline in prohibition
// notices.
func NextBusinessDay(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// FormatMeeting renders the deadline the way notices present it. The meeting
// hour is fixed at 2:00 PM regardless of the time of day.
func FormatMeeting(day time.Time) string {
	return day.Format("Monday, January 2, 2006") + " at 2:00 PM"
}
