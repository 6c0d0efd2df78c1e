package repository

import (
	"database/sql"
	"fmt"
	"time"
)

type DriverRepository struct {
	DB *sql.DB
}

func NewDriverRepository(database *sql.DB) *DriverRepository {
	return &DriverRepository{DB: database}
}

// CountAvailableDrivers returns how many official drivers could serve a trip
// in the given range: active drivers minus those committed to overlapping
// authorized reservations that travel with official drivers (two when the
// reservation needs a second driver).
func (r *DriverRepository) CountAvailableDrivers(start, end time.Time) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM drivers WHERE active)
			- COALESCE((
				SELECT SUM(CASE WHEN requires_two_drivers THEN 2 ELSE 1 END)
				FROM reservations
				WHERE status = 'authorized'
				  AND requires_official_driver
				  AND start_time <= $2
				  AND end_time >= $1
			), 0)`

	var available int
	if err := r.DB.QueryRow(query, start, end).Scan(&available); err != nil {
		return 0, fmt.Errorf("error counting available drivers: %w", err)
	}
	if available < 0 {
		available = 0
	}
	return available, nil
}
