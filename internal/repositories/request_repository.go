package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "carpool/internal/db"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type RequestRepository struct {
	DB *sql.DB
}

const requestColumns = `r.id, r.share_id, r.user_id, r.message, r.status, r.created_at, r.updated_at`

func (r RequestRepository) Create(ctx context.Context, req *models.Request) error {
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO requests (share_id, user_id, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.ShareID, req.UserID, intdb.NullIfEmpty(req.Message), string(req.Status), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert request id: %w", err)
	}
	req.ID = id
	return nil
}

func (r RequestRepository) GetByID(ctx context.Context, id int64) (models.Request, error) {
	return getRequest(ctx, r.DB, id)
}

// ListByUser returns the requests a rider has raised, newest first, each with
// its share and the share's driver.
func (r RequestRepository) ListByUser(ctx context.Context, userID int64) ([]models.RidingTrip, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+requestColumns+`, `+shareColumns+`, u.first_name, u.last_name
		FROM requests r
		JOIN shares s ON s.id = r.share_id
		JOIN users u ON u.id = s.driver_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}
	defer rows.Close()

	out := []models.RidingTrip{}
	for rows.Next() {
		var (
			item           models.RidingTrip
			status         string
			reqMsg, shrMsg sql.NullString
		)
		sh := &item.Share
		if err := rows.Scan(
			&item.ID, &item.ShareID, &item.UserID, &reqMsg, &status, &item.CreatedAt, &item.UpdatedAt,
			&sh.ID, &sh.DriverID, &sh.Origin, &sh.Destination, &sh.DepartureTime, &sh.Spots, &sh.Price, &shrMsg, &sh.CreatedAt,
			&sh.Driver.FirstName, &sh.Driver.LastName,
		); err != nil {
			return out, fmt.Errorf("scan request: %w", err)
		}
		item.Message = intdb.StringPtr(reqMsg)
		item.Status = domain.RequestStatus(status)
		sh.Message = intdb.StringPtr(shrMsg)
		sh.DepartureTime = sh.DepartureTime.UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListForShares returns the requests raised on any of shareIDs, each with the
// requester's name and email.
func (r RequestRepository) ListForShares(ctx context.Context, shareIDs []int64) ([]models.RequestWithUser, error) {
	out := []models.RequestWithUser{}
	if len(shareIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(shareIDs))
	for i, id := range shareIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(shareIDs)), ", ")

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+requestColumns+`, u.id, u.first_name, u.last_name, u.email
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.share_id IN (`+placeholders+`)
		ORDER BY r.created_at ASC, r.id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list share requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item   models.RequestWithUser
			status string
			msg    sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.ShareID, &item.UserID, &msg, &status, &item.CreatedAt, &item.UpdatedAt,
			&item.User.ID, &item.User.FirstName, &item.User.LastName, &item.User.Email,
		); err != nil {
			return out, fmt.Errorf("scan request: %w", err)
		}
		item.Message = intdb.StringPtr(msg)
		item.Status = domain.RequestStatus(status)
		out = append(out, item)
	}
	return out, rows.Err()
}

// Transition moves a PENDING request to status to. Approving also takes one
// spot from the share; both writes commit together or not at all.
//
// A request that is no longer PENDING yields ConflictError. An approval on a
// share with no spots left yields NotAvailableError.
func (r RequestRepository) Transition(ctx context.Context, id, shareID int64, to domain.RequestStatus) (models.Request, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Request{}, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC(), id, string(domain.StatusPending),
	)
	if err != nil {
		return models.Request{}, fmt.Errorf("update request status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Request{}, fmt.Errorf("update request status: %w", err)
	} else if n == 0 {
		return models.Request{}, domain.ConflictError{Msg: "Request is no longer pending"}
	}

	if to == domain.StatusApproved {
		res, err = tx.ExecContext(ctx, `UPDATE shares SET spots = spots - 1 WHERE id = ? AND spots > 0`, shareID)
		if err != nil {
			return models.Request{}, fmt.Errorf("take spot: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return models.Request{}, fmt.Errorf("take spot: %w", err)
		} else if n == 0 {
			return models.Request{}, domain.NotAvailableError{}
		}
	}

	req, err := getRequest(ctx, tx, id)
	if err != nil {
		return models.Request{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Request{}, fmt.Errorf("commit transition: %w", err)
	}
	return req, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRequest(ctx context.Context, q queryRower, id int64) (models.Request, error) {
	var (
		req    models.Request
		status string
		msg    sql.NullString
	)
	err := q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests r WHERE r.id = ?`, id).
		Scan(&req.ID, &req.ShareID, &req.UserID, &msg, &status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return req, domain.NotFoundError{Resource: "request", Err: err}
		}
		return req, fmt.Errorf("scan request: %w", err)
	}
	req.Message = intdb.StringPtr(msg)
	req.Status = domain.RequestStatus(status)
	return req, nil
}
