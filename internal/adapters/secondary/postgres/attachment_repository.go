package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// AttachmentRepository stores ticket files in the database.
type AttachmentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AttachmentRepository = (*AttachmentRepository)(nil)

func NewAttachmentRepository(pool *pgxpool.Pool) ports.AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

func (r *AttachmentRepository) Add(ctx context.Context, attachment domain.Attachment) (*domain.Attachment, error) {
	const query = `
INSERT INTO ticket_attachments (ticket_id, file_name, content_type, size, content, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		attachment.TicketID,
		attachment.FileName,
		attachment.ContentType,
		attachment.Size,
		attachment.Content,
		attachment.UploadedAt,
	).Scan(&attachment.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("adding attachment: %w", err)
	}
	return &attachment, nil
}

// listAttachments loads attachment metadata without content.
func listAttachments(ctx context.Context, db DBTX, ticketIDs []int64) ([]domain.Attachment, error) {
	const query = `
SELECT id, ticket_id, file_name, content_type, size, uploaded_at
FROM ticket_attachments
WHERE ticket_id = ANY($1)
ORDER BY id`

	rows, err := db.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]domain.Attachment, 0)
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.TicketID, &a.FileName, &a.ContentType, &a.Size, &a.UploadedAt); err != nil {
			return nil, err
		}
		a.UploadedAt = a.UploadedAt.UTC()
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
