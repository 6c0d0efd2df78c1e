package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"vehiculos/internal/db"
	"vehiculos/internal/eligibility"
	"vehiculos/internal/entities"
	apperrors "vehiculos/internal/errors"
	"vehiculos/internal/geo"
	"vehiculos/internal/lifecycle"
)

type VehicleStore interface {
	ListActiveVehicles() ([]db.Vehicle, error)
	GetVehicleByID(id int) (*db.Vehicle, error)
}

type ReservationStore interface {
	Create(res *db.Reservation) error
	GetByID(id int) (*db.Reservation, error)
	UpdateStatusIfPending(id int, status string, updatedAt time.Time) (bool, error)
	ListAll() ([]entities.ReservationResponse, error)
	ListByUser(userID int) ([]entities.ReservationResponse, error)
}

type DriverStore interface {
	CountAvailableDrivers(start, end time.Time) (int, error)
}

type UserStore interface {
	GetByID(id int) (*db.User, error)
}

type Geocoder interface {
	Classify(ctx context.Context, destinationText string) (eligibility.Zone, *geo.Place, error)
	Suggest(ctx context.Context, query string) ([]geo.Suggestion, error)
}

// AdvanceNotice configures how far ahead trips must be requested, per zone.
type AdvanceNotice struct {
	LocalDays  int
	RemoteDays int
}

type ReservationService struct {
	vehicles     VehicleStore
	reservations ReservationStore
	drivers      DriverStore
	users        UserStore
	geocoder     Geocoder
	policy       eligibility.DriverPolicy
	notice       AdvanceNotice
	homeRegion   string

	now func() time.Time
}

func NewReservationService(
	vehicles VehicleStore,
	reservations ReservationStore,
	drivers DriverStore,
	users UserStore,
	geocoder Geocoder,
	policy eligibility.DriverPolicy,
	notice AdvanceNotice,
	homeRegion string,
) *ReservationService {
	return &ReservationService{
		vehicles:     vehicles,
		reservations: reservations,
		drivers:      drivers,
		users:        users,
		geocoder:     geocoder,
		policy:       policy,
		notice:       notice,
		homeRegion:   homeRegion,
		now:          time.Now,
	}
}

// evaluation bundles everything one engine run resolved, so availability
// checks and reservation creation share the exact same computation.
type evaluation struct {
	trip   eligibility.TripRequest
	result *eligibility.Result
	place  *geo.Place
}

func (s *ReservationService) evaluateTrip(ctx context.Context, trip eligibility.TripRequest) (*evaluation, error) {
	if trip.Passengers < 1 {
		return nil, fmt.Errorf("%w: debes indicar el número de personas que viajan", apperrors.ErrInvalidRequest)
	}
	if trip.End.Before(trip.Start) {
		return nil, fmt.Errorf("%w: la fecha final no puede ser anterior a la fecha inicial", apperrors.ErrInvalidRequest)
	}
	if strings.TrimSpace(trip.DestinationText) == "" {
		return nil, fmt.Errorf("%w: debes indicar el destino", apperrors.ErrInvalidRequest)
	}

	zone, place, err := s.geocoder.Classify(ctx, trip.DestinationText)
	if err != nil {
		return nil, err
	}

	minDays := s.notice.LocalDays
	if zone == eligibility.ZoneRemote {
		minDays = s.notice.RemoteDays
	}
	if trip.Start.Before(s.now().AddDate(0, 0, minDays)) {
		return nil, fmt.Errorf("%w: el viaje debe apartarse con al menos %d días naturales de anticipación",
			apperrors.ErrInvalidRequest, minDays)
	}

	availableDrivers, err := s.drivers.CountAvailableDrivers(trip.Start, trip.End)
	if err != nil {
		log.Printf("Error counting available drivers: %v", err)
		return nil, fmt.Errorf("internal error checking driver availability: %w", err)
	}

	fleet, err := s.vehicles.ListActiveVehicles()
	if err != nil {
		log.Printf("Error listing active vehicles: %v", err)
		return nil, fmt.Errorf("internal error listing fleet: %w", err)
	}

	result, err := eligibility.Evaluate(trip, toEngineFleet(fleet), eligibility.Conditions{
		Zone:             zone,
		AvailableDrivers: availableDrivers,
		Policy:           s.policy,
	})
	if err != nil {
		return nil, err
	}
	return &evaluation{trip: trip, result: result, place: place}, nil
}

// CheckAvailability runs the eligibility engine for the proposed trip and
// reports which vehicles could serve it, with a capacity explanation when the
// occupancy rule is the only reason nothing qualifies.
func (s *ReservationService) CheckAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	ev, err := s.evaluateTrip(ctx, eligibility.TripRequest{
		DestinationText:        req.DestinationText,
		Start:                  req.StartTime,
		End:                    req.EndTime,
		Passengers:             req.Passengers,
		VanWantsOfficialDriver: req.VanWantsOfficialDriver,
	})
	if err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		DurationHours:      math.Round(ev.result.DurationHours*10) / 10,
		Zone:               string(ev.result.Zone),
		RequiresTwoDrivers: ev.result.RequiresTwoDrivers,
		Vehicles:           toVehicleResponses(ev.result.Vehicles),
	}
	if ev.result.Shortfall != nil {
		resp.CapacityDetail = ev.result.Shortfall.Message()
	}
	return resp, nil
}

// CreateReservation submits a trip against one vehicle. The vehicle must be
// part of the qualifying set computed for these exact parameters; after the
// pending record exists, eligibility is never re-validated.
func (s *ReservationService) CreateReservation(ctx context.Context, owner lifecycle.Actor, req entities.CreateReservationRequest) (*entities.ReservationResponse, error) {
	ev, err := s.evaluateTrip(ctx, eligibility.TripRequest{
		DestinationText:        req.DestinationText,
		Start:                  req.StartTime,
		End:                    req.EndTime,
		Passengers:             req.Passengers,
		VanWantsOfficialDriver: req.VanWantsOfficialDriver,
	})
	if err != nil {
		return nil, err
	}

	res, err := lifecycle.Create(owner, req.VehicleID, ev.trip, ev.result.Vehicles, s.now().UTC())
	if err != nil {
		return nil, err
	}

	var chosen eligibility.Vehicle
	for _, v := range ev.result.Vehicles {
		if v.ID == req.VehicleID {
			chosen = v
			break
		}
	}

	res.DurationHours = ev.result.DurationHours
	res.OutsideHomeRegion = ev.result.Zone == eligibility.ZoneRemote
	res.RequiresTwoDrivers = ev.result.RequiresTwoDrivers
	res.RequiresOfficialDriver = eligibility.NeedsOfficialDriver(chosen, ev.trip)
	if ev.place != nil {
		res.DestinationLat.Valid = true
		res.DestinationLat.Float64 = ev.place.Lat
		res.DestinationLng.Valid = true
		res.DestinationLng.Float64 = ev.place.Lon
	}

	if err := s.reservations.Create(res); err != nil {
		log.Printf("Error creating reservation in repository: %v", err)
		return nil, err
	}

	return s.toResponse(res, chosen.Name), nil
}

// Authorize moves a pending reservation to authorized. Admin only.
func (s *ReservationService) Authorize(actor lifecycle.Actor, id int) (*entities.ReservationResponse, error) {
	return s.decide(actor, id, lifecycle.StatusAuthorized)
}

// Reject moves a pending reservation to rejected. Admin only.
func (s *ReservationService) Reject(actor lifecycle.Actor, id int) (*entities.ReservationResponse, error) {
	return s.decide(actor, id, lifecycle.StatusRejected)
}

func (s *ReservationService) decide(actor lifecycle.Actor, id int, to lifecycle.Status) (*entities.ReservationResponse, error) {
	res, err := s.reservations.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch to {
	case lifecycle.StatusAuthorized:
		err = lifecycle.Authorize(res, actor, s.now().UTC())
	case lifecycle.StatusRejected:
		err = lifecycle.Reject(res, actor, s.now().UTC())
	default:
		err = fmt.Errorf("%w: pending -> %s", apperrors.ErrInvalidTransition, to)
	}
	if err != nil {
		return nil, err
	}

	// Conditional update keyed on the pending state: of two concurrent
	// decisions only one can win; the loser observes the terminal state.
	ok, err := s.reservations.UpdateStatusIfPending(id, string(to), res.UpdatedAt)
	if err != nil {
		log.Printf("Error persisting reservation decision: %v", err)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d is no longer pending", apperrors.ErrInvalidTransition, id)
	}

	vehicleName := ""
	if v, vErr := s.vehicles.GetVehicleByID(res.VehicleID); vErr == nil {
		vehicleName = v.Name
	}
	s.notifyDecision(res, vehicleName, to)

	return s.toResponse(res, vehicleName), nil
}

// ListReservations returns every reservation for administrators and only the
// actor's own otherwise.
func (s *ReservationService) ListReservations(actor lifecycle.Actor) (*entities.ReservationsList, error) {
	var (
		reservations []entities.ReservationResponse
		err          error
	)
	if actor.Role == lifecycle.RoleAdmin {
		reservations, err = s.reservations.ListAll()
	} else {
		reservations, err = s.reservations.ListByUser(actor.ID)
	}
	if err != nil {
		return nil, err
	}
	return &entities.ReservationsList{Total: len(reservations), Reservations: reservations}, nil
}

// ListMyReservations is the explicit own-reservations listing.
func (s *ReservationService) ListMyReservations(actor lifecycle.Actor) (*entities.ReservationsList, error) {
	reservations, err := s.reservations.ListByUser(actor.ID)
	if err != nil {
		return nil, err
	}
	return &entities.ReservationsList{Total: len(reservations), Reservations: reservations}, nil
}

// ListVehicles returns the active fleet with each vehicle's occupancy minimum.
func (s *ReservationService) ListVehicles() ([]entities.VehicleResponse, error) {
	fleet, err := s.vehicles.ListActiveVehicles()
	if err != nil {
		return nil, err
	}
	return toVehicleResponses(toEngineFleet(fleet)), nil
}

// SuggestDestinations asks the geocoder for autocomplete candidates. Failures
// here are non-fatal to everything else; callers may simply retry.
func (s *ReservationService) SuggestDestinations(ctx context.Context, query string) ([]geo.Suggestion, error) {
	return s.geocoder.Suggest(ctx, query)
}

// notifyDecision informs the owner asynchronously. A notification failure
// never undoes a decision.
func (s *ReservationService) notifyDecision(res *db.Reservation, vehicleName string, to lifecycle.Status) {
	owner, err := s.users.GetByID(res.UserID)
	if err != nil {
		log.Printf("ALERTA: no se pudo cargar el usuario %d para notificar la reserva %s: %v", res.UserID, res.Code, err)
		return
	}

	statusText := "autorizada"
	if to == lifecycle.StatusRejected {
		statusText = "rechazada"
	}
	data := entities.DecisionEmailData{
		OwnerName:          owner.FullName,
		ReservationCode:    res.Code,
		VehicleName:        vehicleName,
		DestinationText:    res.DestinationText,
		StartTimeFormatted: res.StartTime.Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   res.EndTime.Format("02 Jan 2006 15:04 MST"),
		Status:             statusText,
	}

	subject := fmt.Sprintf("Tu reserva de vehículo oficial fue %s - Código: %s", data.Status, data.ReservationCode)
	body := fmt.Sprintf(
		"Hola %s,\n\nTu reserva fue %s.\n\n"+
			"Detalles de la reserva:\n"+
			"Código: %s\n"+
			"Vehículo: %s\n"+
			"Destino: %s\n"+
			"Inicio: %s\n"+
			"Fin: %s\n"+
			"Personas: %d\n",
		data.OwnerName, data.Status, data.ReservationCode, data.VehicleName, data.DestinationText,
		data.StartTimeFormatted, data.EndTimeFormatted,
		res.Passengers,
	)

	go func(toEmail, toName, subject, body string) {
		if errEmail := SendEmailWithSendGrid(toEmail, toName, subject, body); errEmail != nil {
			log.Printf("ALERTA (asíncrono): falló el envío de correo para la reserva %s: %v", res.Code, errEmail)
		}
	}(owner.Email, owner.FullName, subject, body)

	if owner.Phone != "" {
		sms := fmt.Sprintf("Vehículos Oficiales: tu reserva %s fue %s.\nInicio: %s.\nMás detalles en tu correo.",
			res.Code, statusText, res.StartTime.Format("02/01 15:04"))
		if errSMS := SendSMS(owner.Phone, sms); errSMS != nil {
			log.Printf("ALERTA: la reserva %s se decidió, pero falló el SMS a %s: %v", res.Code, owner.Phone, errSMS)
		}
	}
}

func (s *ReservationService) toResponse(res *db.Reservation, vehicleName string) *entities.ReservationResponse {
	out := &entities.ReservationResponse{
		ID:                     res.ID,
		Code:                   res.Code,
		VehicleID:              res.VehicleID,
		VehicleName:            vehicleName,
		OwnerID:                res.UserID,
		DestinationText:        res.DestinationText,
		OutsideHomeRegion:      res.OutsideHomeRegion,
		StartTime:              res.StartTime,
		EndTime:                res.EndTime,
		Passengers:             res.Passengers,
		DurationHours:          math.Round(res.DurationHours*10) / 10,
		RequiresTwoDrivers:     res.RequiresTwoDrivers,
		RequiresOfficialDriver: res.RequiresOfficialDriver,
		Status:                 res.Status,
		CreatedAt:              res.CreatedAt,
	}
	if res.DestinationLat.Valid {
		out.DestinationLat = &res.DestinationLat.Float64
	}
	if res.DestinationLng.Valid {
		out.DestinationLng = &res.DestinationLng.Float64
	}
	return out
}

func toEngineFleet(fleet []db.Vehicle) []eligibility.Vehicle {
	out := make([]eligibility.Vehicle, 0, len(fleet))
	for _, v := range fleet {
		out = append(out, eligibility.Vehicle{
			ID:                     v.ID,
			Name:                   v.Name,
			Type:                   eligibility.VehicleType(v.Type),
			Capacity:               v.Capacity,
			RequiresOfficialDriver: v.RequiresOfficialDriver,
		})
	}
	return out
}

func toVehicleResponses(vehicles []eligibility.Vehicle) []entities.VehicleResponse {
	out := make([]entities.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, entities.VehicleResponse{
			ID:                     v.ID,
			Name:                   v.Name,
			Type:                   string(v.Type),
			Capacity:               v.Capacity,
			RequiresOfficialDriver: v.RequiresOfficialDriver,
			MinPassengers:          eligibility.MinOccupancy(v.Capacity),
		})
	}
	return out
}
