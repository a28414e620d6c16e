package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/depanneo/backend/internal/models"
)

const requestColumns = `id, client_id, title, description, category, urgency, budget,
	city, address, latitude, longitude,
	client_first_name, client_last_name, client_phone, client_email,
	status, selected_response_id, cancel_reason, created_at, cancelled_at, completed_at`

// CreateRequest inserts a new repair request. Requests are created
// open with no responses.
func (s *Storage) CreateRequest(ctx context.Context, req *models.RepairRequest) error {
	const op = "storage.CreateRequest"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO repair_requests (` + requestColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
	                  $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := s.DB.ExecContext(ctx, query,
		req.ID, req.ClientID, req.Title, req.Description, req.Category, req.Urgency, req.Budget,
		req.City, req.Address, req.Latitude, req.Longitude,
		req.ClientFirstName, req.ClientLastName, req.ClientPhone, req.ClientEmail,
		req.Status, req.SelectedResponseID, req.CancelReason, req.CreatedAt, req.CancelledAt, req.CompletedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetRequest loads a request with all its responses, or nil when the
// id is unknown.
func (s *Storage) GetRequest(ctx context.Context, id string) (*models.RepairRequest, error) {
	const op = "storage.GetRequest"
	query := `SELECT ` + requestColumns + ` FROM repair_requests WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	responses, err := s.listResponses(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Responses = responses
	return req, nil
}

// ListActiveRequests returns the requests shown in public listings:
// anything not cancelled, with completed requests dropped once their
// CompletedAt falls behind the retention cutoff. The rows stay in the
// table; this is a read-side filter only.
func (s *Storage) ListActiveRequests(ctx context.Context, completedCutoff time.Time, limit, offset int) ([]*models.RepairRequest, error) {
	const op = "storage.ListActiveRequests"
	query := `SELECT ` + requestColumns + `
	          FROM repair_requests
	          WHERE status <> $1
	            AND (completed_at IS NULL OR completed_at > $2)
	          ORDER BY created_at DESC
	          LIMIT $3 OFFSET $4`
	return s.queryRequests(ctx, op, query, models.RequestCancelled, completedCutoff, limit, offset)
}

// ListRequestsByClient returns every request owned by a client.
func (s *Storage) ListRequestsByClient(ctx context.Context, clientID string, limit, offset int) ([]*models.RepairRequest, error) {
	const op = "storage.ListRequestsByClient"
	query := `SELECT ` + requestColumns + `
	          FROM repair_requests
	          WHERE client_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2 OFFSET $3`
	return s.queryRequests(ctx, op, query, clientID, limit, offset)
}

// SaveRequest writes the complete request and its responses back in a
// single transaction. Selection therefore lands as one write: the
// selected response id and the in_progress status can never be
// observed out of sync.
func (s *Storage) SaveRequest(ctx context.Context, req *models.RepairRequest) error {
	const op = "storage.SaveRequest"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE repair_requests
	          SET title = $2, description = $3, category = $4, urgency = $5, budget = $6,
	              city = $7, address = $8, latitude = $9, longitude = $10,
	              client_first_name = $11, client_last_name = $12, client_phone = $13, client_email = $14,
	              status = $15, selected_response_id = $16, cancel_reason = $17,
	              cancelled_at = $18, completed_at = $19
	          WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query,
		req.ID, req.Title, req.Description, req.Category, req.Urgency, req.Budget,
		req.City, req.Address, req.Latitude, req.Longitude,
		req.ClientFirstName, req.ClientLastName, req.ClientPhone, req.ClientEmail,
		req.Status, req.SelectedResponseID, req.CancelReason,
		req.CancelledAt, req.CompletedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i := range req.Responses {
		if err := upsertResponse(ctx, tx, &req.Responses[i]); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) queryRequests(ctx context.Context, op, query string, args ...any) ([]*models.RepairRequest, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.RepairRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, req := range result {
		responses, err := s.listResponses(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		req.Responses = responses
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.RepairRequest, error) {
	var req models.RepairRequest
	var selected sql.NullString
	var cancelledAt, completedAt sql.NullTime
	if err := row.Scan(&req.ID, &req.ClientID, &req.Title, &req.Description, &req.Category,
		&req.Urgency, &req.Budget, &req.City, &req.Address, &req.Latitude, &req.Longitude,
		&req.ClientFirstName, &req.ClientLastName, &req.ClientPhone, &req.ClientEmail,
		&req.Status, &selected, &req.CancelReason, &req.CreatedAt, &cancelledAt, &completedAt); err != nil {
		return nil, err
	}
	if selected.Valid {
		req.SelectedResponseID = &selected.String
	}
	if cancelledAt.Valid {
		req.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		req.CompletedAt = &completedAt.Time
	}
	return &req, nil
}
