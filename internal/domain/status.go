package domain

import "fmt"

// CanTransition is the booking lifecycle table. pending is the only entry state;
// cancelled accepts nothing.
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusPending:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCancelled
	case BookingStatusCancelled:
		return false
	default:
		return false
	}
}

// SourcesOf lists every status that may move to target. Stores use it to build
// conditional updates so the check and the write happen in one statement.
func SourcesOf(target BookingStatus) []BookingStatus {
	sources := make([]BookingStatus, 0, 2)
	for _, s := range AllStatuses() {
		if CanTransition(s, target) {
			sources = append(sources, s)
		}
	}
	return sources
}

func AllStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled}
}

func (s BookingStatus) IsTerminal() bool {
	for _, t := range AllStatuses() {
		if CanTransition(s, t) {
			return false
		}
	}
	return true
}

func (s BookingStatus) String() string {
	return string(s)
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid booking status: %q", s)
}
