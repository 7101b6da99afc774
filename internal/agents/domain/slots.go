package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Booking is an existing, non-cancelled appointment on the agent's day.
type Booking struct {
	AppointmentID   uuid.UUID
	Time            string
	DurationMinutes int
}

type Slot struct {
	Start         string     `json:"start"`
	End           string     `json:"end"`
	Available     bool       `json:"available"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
}

// GenerateDaySlots splits every window of the day's schedule into slots of
// slotMinutes and marks the ones overlapping a booking. A trailing remainder
// shorter than a slot is dropped.
func GenerateDaySlots(availability Availability, date time.Time, slotMinutes int, bookings []Booking) []Slot {
	slots := []Slot{}
	if slotMinutes <= 0 {
		return slots
	}

	day := availability.ForDate(date)
	if !day.Enabled {
		return slots
	}

	step := time.Duration(slotMinutes) * time.Minute
	for _, window := range day.Slots {
		start, err := time.Parse(ClockLayout, window.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(ClockLayout, window.End)
		if err != nil {
			continue
		}

		for slotStart := start; !slotStart.Add(step).After(end); slotStart = slotStart.Add(step) {
			slotEnd := slotStart.Add(step)
			slot := Slot{
				Start:     slotStart.Format(ClockLayout),
				End:       slotEnd.Format(ClockLayout),
				Available: true,
			}
			if id, ok := conflictingBooking(slotStart, slotEnd, bookings, slotMinutes); ok {
				slot.Available = false
				slot.AppointmentID = &id
			}
			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots
}

// conflictingBooking reports the first booking overlapping [start, end).
// Bookings without a duration occupy one slot.
func conflictingBooking(start, end time.Time, bookings []Booking, slotMinutes int) (uuid.UUID, bool) {
	for _, b := range bookings {
		bookingStart, err := time.Parse(ClockLayout, b.Time)
		if err != nil {
			continue
		}
		minutes := b.DurationMinutes
		if minutes <= 0 {
			minutes = slotMinutes
		}
		bookingEnd := bookingStart.Add(time.Duration(minutes) * time.Minute)
		if start.Before(bookingEnd) && end.After(bookingStart) {
			return b.AppointmentID, true
		}
	}
	return uuid.UUID{}, false
}

// Overlaps reports whether two HH:MM based intervals intersect.
func Overlaps(aTime string, aMinutes int, bTime string, bMinutes int) bool {
	aStart, err := time.Parse(ClockLayout, aTime)
	if err != nil {
		return false
	}
	bStart, err := time.Parse(ClockLayout, bTime)
	if err != nil {
		return false
	}
	aEnd := aStart.Add(time.Duration(aMinutes) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMinutes) * time.Minute)
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
