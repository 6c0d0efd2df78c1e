package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vehiculos/internal/db"
	"vehiculos/internal/entities"
	apperrors "vehiculos/internal/errors"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

func (r *ReservationRepository) Create(res *db.Reservation) error {
	query := `
		INSERT INTO reservations
		(code, user_id, vehicle_id, destination_text, destination_lat, destination_lng,
		 outside_home_region, start_time, end_time, passengers, duration_hours,
		 requires_two_drivers, requires_official_driver, status, created_by_admin,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`
	return r.DB.QueryRow(query,
		res.Code,
		res.UserID,
		res.VehicleID,
		res.DestinationText,
		res.DestinationLat,
		res.DestinationLng,
		res.OutsideHomeRegion,
		res.StartTime,
		res.EndTime,
		res.Passengers,
		res.DurationHours,
		res.RequiresTwoDrivers,
		res.RequiresOfficialDriver,
		res.Status,
		res.CreatedByAdmin,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID)
}

func (r *ReservationRepository) GetByID(id int) (*db.Reservation, error) {
	var res db.Reservation
	query := `
		SELECT id, code, user_id, vehicle_id, destination_text, destination_lat, destination_lng,
		       outside_home_region, start_time, end_time, passengers, duration_hours,
		       requires_two_drivers, requires_official_driver, status, created_by_admin,
		       created_at, updated_at
		FROM reservations WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&res.ID, &res.Code, &res.UserID, &res.VehicleID, &res.DestinationText,
		&res.DestinationLat, &res.DestinationLng, &res.OutsideHomeRegion,
		&res.StartTime, &res.EndTime, &res.Passengers, &res.DurationHours,
		&res.RequiresTwoDrivers, &res.RequiresOfficialDriver, &res.Status,
		&res.CreatedByAdmin, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: reservation %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return &res, nil
}

// UpdateStatusIfPending is the single conditional update both decisions go
// through: only one of two concurrent decisions on the same pending record
// can win the row.
func (r *ReservationRepository) UpdateStatusIfPending(id int, status string, updatedAt time.Time) (bool, error) {
	result, err := r.DB.Exec(
		`UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3 AND status = 'pending'`,
		status, updatedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("error updating reservation status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return affected == 1, nil
}

const reservationSelect = `
	SELECT r.id, r.code, r.vehicle_id, v.name, r.user_id, u.full_name, u.email,
	       r.destination_text, r.destination_lat, r.destination_lng, r.outside_home_region,
	       r.start_time, r.end_time, r.passengers, r.duration_hours,
	       r.requires_two_drivers, r.requires_official_driver, r.status, r.created_at
	FROM reservations r
	JOIN vehicles v ON r.vehicle_id = v.id
	JOIN users u ON r.user_id = u.id`

// ListAll returns every reservation, newest first. Admin view.
func (r *ReservationRepository) ListAll() ([]entities.ReservationResponse, error) {
	rows, err := r.DB.Query(reservationSelect + ` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()
	return scanReservationResponses(rows)
}

// ListByUser returns a requester's own reservations, newest first.
func (r *ReservationRepository) ListByUser(userID int) ([]entities.ReservationResponse, error) {
	rows, err := r.DB.Query(reservationSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying user reservations: %w", err)
	}
	defer rows.Close()
	return scanReservationResponses(rows)
}

func scanReservationResponses(rows *sql.Rows) ([]entities.ReservationResponse, error) {
	var out []entities.ReservationResponse
	for rows.Next() {
		var res entities.ReservationResponse
		var lat, lng sql.NullFloat64
		err := rows.Scan(
			&res.ID, &res.Code, &res.VehicleID, &res.VehicleName,
			&res.OwnerID, &res.OwnerName, &res.OwnerEmail,
			&res.DestinationText, &lat, &lng, &res.OutsideHomeRegion,
			&res.StartTime, &res.EndTime, &res.Passengers, &res.DurationHours,
			&res.RequiresTwoDrivers, &res.RequiresOfficialDriver, &res.Status, &res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation row: %w", err)
		}
		if lat.Valid {
			res.DestinationLat = &lat.Float64
		}
		if lng.Valid {
			res.DestinationLng = &lng.Float64
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation rows: %w", err)
	}
	return out, nil
}
