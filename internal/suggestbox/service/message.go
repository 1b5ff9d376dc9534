package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/blob"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/idx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// MaxAttachments bounds how many files one submission may carry.
const MaxAttachments = 5

// allowedFileTypes gates attachment content types per message type. Ideas
// take archives and documents; issues take evidence (screenshots, clips)
// and documents.
var allowedFileTypes = map[domain.MessageType]map[string]bool{
	domain.MessageTypeIdea: {
		"application/zip":              true,
		"application/x-zip-compressed": true,
		"application/pdf":              true,
	},
	domain.MessageTypeIssue: {
		"image/jpeg":      true,
		"image/png":       true,
		"video/mp4":       true,
		"video/quicktime": true,
		"video/x-msvideo": true,
		"application/pdf": true,
	},
}

// FileUpload is one attachment as received from a multipart form.
type FileUpload struct {
	ContentType string
	Body        io.Reader
}

// MessageService handles employee submissions and HR/admin triage.
type MessageService struct {
	Store store.Store
	Blobs blob.Store
}

// Send validates and persists a submission, uploading each attachment to
// the blob store first.
func (s *MessageService) Send(ctx context.Context, senderID, title, description string, mtype domain.MessageType, files []FileUpload) (domain.Message, error) {
	log := slogx.FromContext(ctx)

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return domain.Message{}, ErrInvalidInput
	}
	allowed, ok := allowedFileTypes[mtype]
	if !ok {
		return domain.Message{}, ErrInvalidInput
	}
	if len(files) > MaxAttachments {
		return domain.Message{}, ErrTooManyFiles
	}
	for _, f := range files {
		if !allowed[f.ContentType] {
			return domain.Message{}, ErrInvalidFileType
		}
	}

	attachments := make([]domain.Attachment, 0, len(files))
	for _, f := range files {
		key := blob.NewStorageKey()
		if err := s.Blobs.Put(ctx, key, f.ContentType, f.Body); err != nil {
			return domain.Message{}, err
		}
		attachments = append(attachments, domain.Attachment{URL: key, MimeType: f.ContentType})
	}

	now := time.Now().UTC()
	msg := domain.Message{
		ID:          idx.New().String(),
		Title:       title,
		Description: description,
		SenderID:    senderID,
		Type:        mtype,
		Status:      domain.MessageStatusPending,
		Files:       attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Messages().CreateMessage(ctx, msg); err != nil {
		return domain.Message{}, err
	}

	log.Info("message submitted", "message_id", msg.ID, "type", mtype, "files", len(attachments))
	return msg, nil
}

// ListMessages returns a filtered triage page, newest first.
func (s *MessageService) ListMessages(ctx context.Context, f store.MessageFilter) ([]domain.Message, int, error) {
	return s.Store.Messages().ListMessages(ctx, f)
}

// ListMine returns the caller's own submissions, including resolution
// comments.
func (s *MessageService) ListMine(ctx context.Context, senderID string, page, limit int) ([]domain.Message, int, error) {
	return s.Store.Messages().ListMessages(ctx, store.MessageFilter{
		SenderID: senderID,
		Page:     page,
		Limit:    limit,
	})
}

// Resolve marks a message resolved with a triage comment.
func (s *MessageService) Resolve(ctx context.Context, id, comment string) (domain.Message, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.Message{}, ErrInvalidInput
	}

	if err := s.Store.Messages().ResolveMessage(ctx, id, comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Message{}, ErrMessageNotFound
		}
		return domain.Message{}, err
	}

	slogx.FromContext(ctx).Info("message resolved", "message_id", id)
	return s.Store.Messages().GetMessageByID(ctx, id)
}

// OpenAttachment streams the first attachment of a message from the blob
// store, returning the payload, its content type, and the storage key.
func (s *MessageService) OpenAttachment(ctx context.Context, messageID string) (io.ReadCloser, string, string, error) {
	msg, err := s.Store.Messages().GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", "", ErrMessageNotFound
		}
		return nil, "", "", err
	}
	if len(msg.Files) == 0 {
		return nil, "", "", ErrAttachmentMissing
	}

	file := msg.Files[0]
	rc, contentType, err := s.Blobs.Get(ctx, file.URL)
	if err != nil {
		return nil, "", "", err
	}
	if contentType == "" {
		contentType = file.MimeType
	}
	return rc, contentType, file.URL, nil
}

// PresignAttachment returns a short-lived direct URL for the first attachment
// of a message. The second return is false when the blob backend cannot
// presign, in which case the caller should stream via OpenAttachment.
func (s *MessageService) PresignAttachment(ctx context.Context, messageID string) (string, bool, error) {
	presigner, ok := s.Blobs.(blob.Presigner)
	if !ok {
		return "", false, nil
	}

	msg, err := s.Store.Messages().GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", false, ErrMessageNotFound
		}
		return "", false, err
	}
	if len(msg.Files) == 0 {
		return "", false, ErrAttachmentMissing
	}

	url, err := presigner.PresignGet(ctx, msg.Files[0].URL, 15*time.Minute)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}
