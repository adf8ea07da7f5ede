package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "carpool/internal/db"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type ShareRepository struct {
	DB *sql.DB
}

const shareColumns = `s.id, s.driver_id, s.origin, s.destination, s.departure_time, s.spots, s.price, s.message, s.created_at`

func (r ShareRepository) Create(ctx context.Context, s *models.Share) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO shares (driver_id, origin, destination, departure_time, spots, price, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.DriverID, s.Origin, s.Destination, s.DepartureTime.UTC(), s.Spots, s.Price, intdb.NullIfEmpty(s.Message), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert share id: %w", err)
	}
	s.ID = id
	return nil
}

func (r ShareRepository) GetByID(ctx context.Context, id int64) (models.Share, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM shares s WHERE s.id = ?`, id)
	s, err := scanShare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, domain.NotFoundError{Resource: "share", Err: err}
	}
	return s, err
}

// Search returns bookable shares matching q, soonest departure first.
func (r ShareRepository) Search(ctx context.Context, q models.ShareQuery) ([]models.ShareWithDriver, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+shareColumns+`, u.first_name, u.last_name
		FROM shares s
		JOIN users u ON u.id = s.driver_id
		WHERE LOWER(s.origin) LIKE ? ESCAPE '!'
		  AND LOWER(s.destination) LIKE ? ESCAPE '!'
		  AND s.departure_time >= ?
		  AND s.departure_time <= ?
		  AND s.spots > 0
		ORDER BY s.departure_time ASC, s.id ASC`,
		intdb.LikeContains(q.Origin), intdb.LikeContains(q.Destination), q.From.UTC(), q.To.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("search shares: %w", err)
	}
	defer rows.Close()

	out := []models.ShareWithDriver{}
	for rows.Next() {
		var item models.ShareWithDriver
		var msg sql.NullString
		if err := rows.Scan(
			&item.ID, &item.DriverID, &item.Origin, &item.Destination, &item.DepartureTime,
			&item.Spots, &item.Price, &msg, &item.CreatedAt,
			&item.Driver.FirstName, &item.Driver.LastName,
		); err != nil {
			return out, fmt.Errorf("scan share: %w", err)
		}
		item.Message = intdb.StringPtr(msg)
		item.DepartureTime = item.DepartureTime.UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r ShareRepository) ListByDriver(ctx context.Context, driverID int64) ([]models.Share, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+shareColumns+` FROM shares s WHERE s.driver_id = ? ORDER BY s.departure_time DESC, s.id DESC`, driverID)
	if err != nil {
		return nil, fmt.Errorf("list driver shares: %w", err)
	}
	defer rows.Close()

	out := []models.Share{}
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return out, fmt.Errorf("scan share: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListWithDrivers returns every share with its driver's name and email.
func (r ShareRepository) ListWithDrivers(ctx context.Context) ([]models.ShareWithDriver, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+shareColumns+`, u.id, u.first_name, u.last_name, u.email
		FROM shares s
		JOIN users u ON u.id = s.driver_id
		ORDER BY s.departure_time DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	out := []models.ShareWithDriver{}
	for rows.Next() {
		var item models.ShareWithDriver
		var msg sql.NullString
		if err := rows.Scan(
			&item.ID, &item.DriverID, &item.Origin, &item.Destination, &item.DepartureTime,
			&item.Spots, &item.Price, &msg, &item.CreatedAt,
			&item.Driver.ID, &item.Driver.FirstName, &item.Driver.LastName, &item.Driver.Email,
		); err != nil {
			return out, fmt.Errorf("scan share: %w", err)
		}
		item.Message = intdb.StringPtr(msg)
		item.DepartureTime = item.DepartureTime.UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanShare(row rowScanner) (models.Share, error) {
	var (
		s   models.Share
		msg sql.NullString
	)
	if err := row.Scan(&s.ID, &s.DriverID, &s.Origin, &s.Destination, &s.DepartureTime, &s.Spots, &s.Price, &msg, &s.CreatedAt); err != nil {
		return s, err
	}
	s.Message = intdb.StringPtr(msg)
	s.DepartureTime = s.DepartureTime.UTC()
	return s, nil
}
