package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
)

type messagesRepo struct {
	q querier
}

const messageColumns = `id, title, description, sender_id, type, status, comment,
	created_at, updated_at`

func scanMessage(row interface{ Scan(...any) error }) (domain.Message, error) {
	var (
		m      domain.Message
		mtype  string
		status string
	)

	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.SenderID, &mtype, &status,
		&m.Comment, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Message{}, err
	}

	m.Type = domain.MessageType(mtype)
	m.Status = domain.MessageStatus(status)
	return m, nil
}

func (r *messagesRepo) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO messages (id, title, description, sender_id, type, status, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Description, m.SenderID, string(m.Type), string(m.Status),
		m.Comment, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, f := range m.Files {
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO message_files (message_id, file_url, mime_type)
			VALUES (?, ?, ?)`,
			m.ID, f.URL, f.MimeType,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *messagesRepo) GetMessageByID(ctx context.Context, id string) (domain.Message, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err != nil {
		return domain.Message{}, mapNotFound(err)
	}

	files, err := r.filesFor(ctx, []string{m.ID})
	if err != nil {
		return domain.Message{}, err
	}
	m.Files = files[m.ID]
	return m, nil
}

func (r *messagesRepo) ListMessages(ctx context.Context, f store.MessageFilter) ([]domain.Message, int, error) {
	where, args := buildMessageFilter(f)

	var total int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	listArgs := append(append([]any{}, args...), limit, (page-1)*limit)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var msgs []domain.Message
	var ids []string
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	files, err := r.filesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range msgs {
		msgs[i].Files = files[msgs[i].ID]
	}

	return msgs, total, nil
}

func buildMessageFilter(f store.MessageFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Title != "" {
		conds = append(conds, "title LIKE ?")
		args = append(args, "%"+f.Title+"%")
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.SenderID != "" {
		conds = append(conds, "sender_id = ?")
		args = append(args, f.SenderID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *messagesRepo) filesFor(ctx context.Context, ids []string) (map[string][]domain.Attachment, error) {
	out := make(map[string][]domain.Attachment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT message_id, file_url, mime_type FROM message_files
		WHERE message_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msgID string
		var a domain.Attachment
		if err := rows.Scan(&msgID, &a.URL, &a.MimeType); err != nil {
			return nil, err
		}
		out[msgID] = append(out[msgID], a)
	}
	return out, rows.Err()
}

func (r *messagesRepo) ResolveMessage(ctx context.Context, id, comment string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE messages SET status = ?, comment = ?, updated_at = ? WHERE id = ?`,
		string(domain.MessageStatusResolved), comment, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
