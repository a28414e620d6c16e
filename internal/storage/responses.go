package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/models"
)

const responseColumns = `id, request_id, reparateur_id, reparateur_name, company_name,
	message, price, estimated_time, status, created_at, updated_at`

// listResponses loads the responses of one request, oldest first.
func (s *Storage) listResponses(ctx context.Context, requestID string) ([]models.Response, error) {
	const op = "storage.listResponses"
	query := `SELECT ` + responseColumns + `
	          FROM responses
	          WHERE request_id = $1
	          ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Response
	for rows.Next() {
		var resp models.Response
		var price sql.NullFloat64
		var updatedAt sql.NullTime
		if err := rows.Scan(&resp.ID, &resp.RequestID, &resp.ReparateurID, &resp.ReparateurName,
			&resp.CompanyName, &resp.Message, &price, &resp.EstimatedTime, &resp.Status,
			&resp.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if price.Valid {
			resp.Price = &price.Float64
		}
		if updatedAt.Valid {
			resp.UpdatedAt = &updatedAt.Time
		}
		result = append(result, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// upsertResponse writes one response row inside the SaveRequest
// transaction. The (request_id, reparateur_id) unique index is the
// database-side backstop for the one-response-per-reparateur rule; a
// violation surfaces as a Conflict fault.
func upsertResponse(ctx context.Context, tx *sql.Tx, resp *models.Response) error {
	const op = "storage.upsertResponse"
	query := `INSERT INTO responses (` + responseColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (id) DO UPDATE
	          SET status = EXCLUDED.status,
	              message = EXCLUDED.message,
	              price = EXCLUDED.price,
	              estimated_time = EXCLUDED.estimated_time,
	              updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, query,
		resp.ID, resp.RequestID, resp.ReparateurID, resp.ReparateurName, resp.CompanyName,
		resp.Message, resp.Price, resp.EstimatedTime, resp.Status, resp.CreatedAt, resp.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fault.New(fault.Conflict, "reparateur already responded to this request")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
