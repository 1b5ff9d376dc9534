package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, name, email, password_hash, role, active,
	otp_code, otp_expires_at, reset_token_hash, reset_expires_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u            domain.User
		role         string
		otpCode      sql.NullString
		otpExpires   sql.NullTime
		resetHash    sql.NullString
		resetExpires sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Active,
		&otpCode, &otpExpires, &resetHash, &resetExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.OTPCode = mapNullString(otpCode)
	u.OTPExpiresAt = mapNullTime(otpExpires)
	u.ResetTokenHash = mapNullString(resetHash)
	u.ResetExpiresAt = mapNullTime(resetExpires)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Active,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, int, error) {
	where, args := buildUserFilter(f)

	var total int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	listArgs := append(append([]any{}, args...), limit, (page-1)*limit)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func buildUserFilter(f store.UserFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Name != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.Email != "" {
		conds = append(conds, "email LIKE ?")
		args = append(args, "%"+f.Email+"%")
	}
	if f.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, string(f.Role))
	}
	if f.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, *f.Active)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const defaultPageSize = 10

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

func (r *usersRepo) UpdateUserProfile(ctx context.Context, id, name, email string, role domain.Role) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, role = ?, updated_at = ?
		WHERE id = ?`,
		name, email, string(role), time.Now().UTC(), id)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowAffected(res)
}

func (r *usersRepo) UpdateUserPasswordHash(ctx context.Context, id, newHash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) SetRecoveryCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET otp_code = ?, otp_expires_at = ?, updated_at = ? WHERE id = ?`,
		code, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) GetUserByRecoveryCode(ctx context.Context, code string, now time.Time) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE otp_code = ? AND otp_expires_at > ?`,
		code, now)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ClearRecoveryCode(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET otp_code = NULL, otp_expires_at = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) SetResetTicket(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ? WHERE id = ?`,
		tokenHash, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) ClearResetTicket(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) DeleteExpiredRecoveryState(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET otp_code = NULL, otp_expires_at = NULL
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at <= ?`, now)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_expires_at = NULL
		WHERE reset_expires_at IS NOT NULL AND reset_expires_at <= ?`, now)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
