// Package reservationv1 is the ReservationService contract: messages, server registration and client.
// Messages are plain structs carried by the JSON codec (api/codec).
package reservationv1

import (
	"time"
)

// RequestReservationRequest starts a reservation for the authenticated caller.
type RequestReservationRequest struct {
	EventID string `json:"event_id"`
}

func (x *RequestReservationRequest) GetEventId() string {
	if x == nil {
		return ""
	}
	return x.EventID
}

// RequestReservationResponse identifies the issued challenge. The code itself is delivered out of band.
type RequestReservationResponse struct {
	ChallengeID      string    `json:"challenge_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int64     `json:"expires_in_seconds"`
}

// VerifyReservationRequest commits a reservation with the delivered code.
type VerifyReservationRequest struct {
	EventID string `json:"event_id"`
	Code    string `json:"code"`
}

func (x *VerifyReservationRequest) GetEventId() string {
	if x == nil {
		return ""
	}
	return x.EventID
}

func (x *VerifyReservationRequest) GetCode() string {
	if x == nil {
		return ""
	}
	return x.Code
}

// VerifyReservationResponse carries the attendance snapshot observed by the committing step.
type VerifyReservationResponse struct {
	EventID       string `json:"event_id"`
	AttendeeCount int    `json:"attendee_count"`
	Capacity      int    `json:"capacity"`
}

// CancelReservationRequest withdraws the caller from the event.
type CancelReservationRequest struct {
	EventID string `json:"event_id"`
}

func (x *CancelReservationRequest) GetEventId() string {
	if x == nil {
		return ""
	}
	return x.EventID
}

type CancelReservationResponse struct{}

// GetAttendanceRequest asks for an event's attendance (display only).
type GetAttendanceRequest struct {
	EventID string `json:"event_id"`
}

func (x *GetAttendanceRequest) GetEventId() string {
	if x == nil {
		return ""
	}
	return x.EventID
}

type Attendee struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

type GetAttendanceResponse struct {
	EventID       string     `json:"event_id"`
	Capacity      int        `json:"capacity"`
	AttendeeCount int        `json:"attendee_count"`
	Available     int        `json:"available"`
	Attendees     []Attendee `json:"attendees"`
	// Registered is true when the caller is an attendee.
	Registered bool `json:"registered"`
}
