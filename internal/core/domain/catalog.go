package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
)

// MaxAttachmentSize bounds a single uploaded file.
const MaxAttachmentSize = 10 << 20

// Category is reference data used to classify tickets.
type Category struct {
	ID   int64
	Name string
}

// ProblemType is reference data carrying the priority applied to new
// tickets that do not state one.
type ProblemType struct {
	ID              int64
	Name            string
	DefaultPriority TicketPriority
}

// Attachment is a file attached to a ticket. Content is only populated
// on upload; reads return metadata.
type Attachment struct {
	ID          int64
	TicketID    int64
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
	UploadedAt  time.Time
}

func (a Attachment) Validate() error {
	if strings.TrimSpace(a.FileName) == "" {
		return apperrors.ErrAttachmentNameRequired
	}
	if len(a.Content) == 0 && a.Size == 0 {
		return apperrors.ErrAttachmentEmptyContents
	}
	if a.Size > MaxAttachmentSize || len(a.Content) > MaxAttachmentSize {
		return apperrors.ErrAttachmentTooLarge
	}
	return nil
}
