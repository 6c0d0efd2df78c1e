package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"vehiculos/internal/db"
	"vehiculos/internal/eligibility"
	apperrors "vehiculos/internal/errors"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusRejected   Status = "rejected"
)

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated user an operation runs on behalf of. It is
// threaded explicitly through every call; there is no ambient session state.
type Actor struct {
	ID   int
	Role Role
}

// allowedTransitions: pending is the only non-terminal state.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusAuthorized, StatusRejected},
	StatusAuthorized: {},
	StatusRejected:   {},
}

// CanTransition reports whether from -> to is a legal state change.
// Repeating a terminal state is not legal: callers must treat terminal states
// as authoritative instead of retrying decisions.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Create builds a new pending reservation owned by owner. The chosen vehicle
// must belong to the qualifying set the eligibility engine computed for this
// same trip; eligibility is never re-validated after creation.
func Create(owner Actor, vehicleID int, trip eligibility.TripRequest, qualifying []eligibility.Vehicle, now time.Time) (*db.Reservation, error) {
	eligible := false
	for _, v := range qualifying {
		if v.ID == vehicleID {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, fmt.Errorf("%w: vehicle %d", apperrors.ErrIneligibleVehicle, vehicleID)
	}

	return &db.Reservation{
		Code:            uuid.NewString(),
		UserID:          owner.ID,
		VehicleID:       vehicleID,
		DestinationText: trip.DestinationText,
		StartTime:       trip.Start,
		EndTime:         trip.End,
		Passengers:      trip.Passengers,
		Status:          string(StatusPending),
		CreatedByAdmin:  owner.Role == RoleAdmin,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Authorize moves a pending reservation to authorized. Only administrators
// may decide; a failed guard leaves the record untouched.
func Authorize(res *db.Reservation, actor Actor, now time.Time) error {
	return applyDecision(res, actor, StatusAuthorized, now)
}

// Reject moves a pending reservation to rejected, with the same guards as
// Authorize.
func Reject(res *db.Reservation, actor Actor, now time.Time) error {
	return applyDecision(res, actor, StatusRejected, now)
}

func applyDecision(res *db.Reservation, actor Actor, to Status, now time.Time) error {
	if actor.Role != RoleAdmin {
		return fmt.Errorf("%w: role %q cannot decide reservations", apperrors.ErrForbidden, actor.Role)
	}
	from := Status(res.Status)
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, from, to)
	}
	res.Status = string(to)
	res.UpdatedAt = now
	return nil
}
