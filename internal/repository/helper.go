package repository

import (
	"fmt"
	"time"
)

// DateFormat is the storage format for calendar dates.
const DateFormat = "2006-01-02"

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(DateFormat, str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}
