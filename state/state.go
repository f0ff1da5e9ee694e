package state

import (
	"errors"
)

// RoomStatus 表示房间的业务状态
type RoomStatus string

const (
	StatusWaiting   RoomStatus = "waiting"
	StatusCountdown RoomStatus = "countdown"
	StatusActive    RoomStatus = "active"
	StatusFinished  RoomStatus = "finished"
)

// ErrTransitionNotAllowed is returned when a status transition is not allowed.
var ErrTransitionNotAllowed = errors.New("room status transition not allowed")

// transitions is the closed set of legal status changes. A countdown can fall
// back to waiting when the room empties before the match starts.
var transitions = map[RoomStatus][]RoomStatus{
	StatusWaiting:   {StatusCountdown},
	StatusCountdown: {StatusActive, StatusWaiting},
	StatusActive:    {StatusFinished},
	StatusFinished:  {},
}

// CanTransition reports whether moving from one status to another is legal.
// A no-op transition (same status) is always allowed.
func CanTransition(from, to RoomStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the new status.
func Transition(from, to RoomStatus) (RoomStatus, error) {
	if !CanTransition(from, to) {
		return from, ErrTransitionNotAllowed
	}
	return to, nil
}
