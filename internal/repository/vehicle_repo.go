package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"vehiculos/internal/db"
	apperrors "vehiculos/internal/errors"
)

type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(database *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: database}
}

// ListActiveVehicles returns the fleet the eligibility engine evaluates
// against, in registry order.
func (r *VehicleRepository) ListActiveVehicles() ([]db.Vehicle, error) {
	query := `
		SELECT id, name, type, capacity, requires_official_driver, active
		FROM vehicles
		WHERE active
		ORDER BY id`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying active vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &v.RequiresOfficialDriver, &v.Active); err != nil {
			return nil, fmt.Errorf("error scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating vehicle rows: %w", err)
	}
	return vehicles, nil
}

func (r *VehicleRepository) GetVehicleByID(id int) (*db.Vehicle, error) {
	var v db.Vehicle
	err := r.DB.QueryRow(
		`SELECT id, name, type, capacity, requires_official_driver, active FROM vehicles WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &v.RequiresOfficialDriver, &v.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error querying vehicle: %w", err)
	}
	return &v, nil
}
