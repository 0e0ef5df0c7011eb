package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `
	id, name, email, password_hash, password_version, role, status, email_verified,
	email_verification_code_hash, email_verification_code_expires_at,
	reset_password_code_hash, reset_password_code_expires_at,
	student_id, department, avatar, organization, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.PasswordVersion,
		string(u.Role),
		string(u.Status),
		u.EmailVerified,
		mapOptionalString(u.EmailVerificationCodeHash),
		mapOptionalTime(u.EmailVerificationCodeExpiresAt),
		mapOptionalString(u.ResetPasswordCodeHash),
		mapOptionalTime(u.ResetPasswordCodeExpiresAt),
		u.StudentID,
		u.Department,
		u.Avatar,
		u.Organization,
		toUnix(u.CreatedAt),
		toUnix(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) ActivateUser(ctx context.Context, userID string, now time.Time) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE users
		SET status = 'active',
		    email_verified = 1,
		    email_verification_code_hash = NULL,
		    email_verification_code_expires_at = NULL,
		    updated_at = ?
		WHERE id = ?`,
		toUnix(now), userID,
	))
}

func (r *usersRepo) SetResetCode(ctx context.Context, userID, codeHash string, expiresAt, now time.Time) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE users
		SET reset_password_code_hash = ?,
		    reset_password_code_expires_at = ?,
		    updated_at = ?
		WHERE id = ?`,
		codeHash, toUnix(expiresAt), toUnix(now), userID,
	))
}

func (r *usersRepo) ResetPassword(ctx context.Context, userID, newHash string, now time.Time) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?,
		    password_version = password_version + 1,
		    reset_password_code_hash = NULL,
		    reset_password_code_expires_at = NULL,
		    updated_at = ?
		WHERE id = ?`,
		newHash, toUnix(now), userID,
	))
}

func (r *usersRepo) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET reset_password_code_hash = NULL,
		    reset_password_code_expires_at = NULL
		WHERE reset_password_code_expires_at IS NOT NULL
		  AND reset_password_code_expires_at <= ?`,
		toUnix(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                domain.User
		role, status     string
		verifyHash       sql.NullString
		verifyExpires    sql.NullInt64
		resetHash        sql.NullString
		resetExpires     sql.NullInt64
		created, updated int64
	)

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.PasswordVersion,
		&role,
		&status,
		&u.EmailVerified,
		&verifyHash,
		&verifyExpires,
		&resetHash,
		&resetExpires,
		&u.StudentID,
		&u.Department,
		&u.Avatar,
		&u.Organization,
		&created,
		&updated,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.Status = domain.Status(status)
	u.EmailVerificationCodeHash = mapNullString(verifyHash)
	u.EmailVerificationCodeExpiresAt = mapNullTime(verifyExpires)
	u.ResetPasswordCodeHash = mapNullString(resetHash)
	u.ResetPasswordCodeExpiresAt = mapNullTime(resetExpires)
	u.CreatedAt = fromUnix(created)
	u.UpdatedAt = fromUnix(updated)
	return u, nil
}

var _ store.Users = (*usersRepo)(nil)
