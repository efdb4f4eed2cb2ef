package domain

import "time"

// AgeMinutes returns how many minutes ago a spot time was, relative to now.
// A spot logged before midnight UTC and viewed after it is handled by moving
// the current hour into the next day, so 2350Z viewed at 0010Z is 20 minutes old.
// A spot time later in the same hour than now yields a negative age.
func AgeMinutes(t ZuluTime, now time.Time) int {
	now = now.UTC()
	hour := now.Hour()
	if hour < t.Hour {
		hour += 24
	}
	return (hour-t.Hour)*60 + (now.Minute() - t.Minute)
}
