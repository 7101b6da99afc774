// Package domain holds agent availability and day slot generation.
package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = time.DateOnly
	ClockLayout = "15:04"
)

var weekdayKeys = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Window is one bookable span within a day, both ends as HH:MM.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DaySchedule struct {
	Enabled bool     `json:"enabled"`
	Slots   []Window `json:"slots"`
}

// Availability is the weekly schedule of an agent keyed by lowercase English
// weekday name, plus date exceptions keyed by YYYY-MM-DD.
type Availability struct {
	Days       map[string]DaySchedule `json:"days"`
	Exceptions map[string]DaySchedule `json:"exceptions,omitempty"`
}

// ForDate returns the schedule that applies on date. An exception for the date
// replaces the weekday schedule entirely.
func (a Availability) ForDate(date time.Time) DaySchedule {
	if exception, ok := a.Exceptions[date.Format(DateLayout)]; ok {
		return exception
	}
	return a.Days[weekdayKeys[date.Weekday()]]
}

// Validate checks weekday keys, exception dates and window bounds.
func (a Availability) Validate() error {
	for key, day := range a.Days {
		if !isWeekdayKey(key) {
			return fmt.Errorf("día no válido: %s", key)
		}
		if err := day.validate(); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	for key, day := range a.Exceptions {
		if _, err := time.Parse(DateLayout, key); err != nil {
			return fmt.Errorf("fecha de excepción no válida: %s", key)
		}
		if err := day.validate(); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (d DaySchedule) validate() error {
	for _, w := range d.Slots {
		start, err := time.Parse(ClockLayout, w.Start)
		if err != nil {
			return fmt.Errorf("hora de inicio no válida: %s", w.Start)
		}
		end, err := time.Parse(ClockLayout, w.End)
		if err != nil {
			return fmt.Errorf("hora de fin no válida: %s", w.End)
		}
		if !end.After(start) {
			return fmt.Errorf("la ventana %s-%s termina antes de empezar", w.Start, w.End)
		}
	}
	return nil
}

func isWeekdayKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range weekdayKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Normalize lowercases weekday keys and guarantees non-nil maps.
func (a Availability) Normalize() Availability {
	out := Availability{
		Days:       make(map[string]DaySchedule, len(a.Days)),
		Exceptions: make(map[string]DaySchedule, len(a.Exceptions)),
	}
	for k, v := range a.Days {
		out.Days[strings.ToLower(k)] = v
	}
	for k, v := range a.Exceptions {
		out.Exceptions[k] = v
	}
	return out
}
