package solutionsheet

import (
	"fmt"
	"math"
)

// TimeUnit is a duration unit offered by the settings form, in seconds.
type TimeUnit int64

const (
	UnitSecond TimeUnit = 1
	UnitMinute TimeUnit = 60
	UnitHour   TimeUnit = 3600
	UnitDay    TimeUnit = 86400
	UnitWeek   TimeUnit = 604800
)

// TimeUnits lists the supported units from largest to smallest.
var TimeUnits = []TimeUnit{UnitWeek, UnitDay, UnitHour, UnitMinute, UnitSecond}

// Valid reports whether u is a supported unit.
func (u TimeUnit) Valid() bool {
	for _, unit := range TimeUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// Key returns the catalog key for the unit label.
func (u TimeUnit) Key() string {
	switch u {
	case UnitWeek:
		return "unit.weeks"
	case UnitDay:
		return "unit.days"
	case UnitHour:
		return "unit.hours"
	case UnitMinute:
		return "unit.minutes"
	default:
		return "unit.seconds"
	}
}

// SplitDuration presents seconds as a number of the largest unit that divides
// it evenly. Zero is presented in minutes.
func SplitDuration(seconds int64) (int64, TimeUnit) {
	if seconds == 0 {
		return 0, UnitMinute
	}
	for _, unit := range TimeUnits {
		if seconds%int64(unit) == 0 {
			return seconds / int64(unit), unit
		}
	}
	return seconds, UnitSecond
}

// JoinDuration converts a number of units back to seconds.
func JoinDuration(number float64, unit TimeUnit) (int64, error) {
	if !unit.Valid() {
		return 0, fmt.Errorf("unsupported time unit %d", unit)
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("duration must be a finite number")
	}
	if number < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	seconds := number * float64(unit)
	// float64(MaxInt64) is 2^63, one past the largest int64.
	if seconds >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("duration is too large")
	}
	return int64(seconds), nil
}
