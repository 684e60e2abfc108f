package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"partnerdash/internal/credentials"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/sentinel"
)

// PostgresStore persists credential records in PostgreSQL. Schema lives in
// migrations/ and is applied by database.RunMigrations.
type PostgresStore struct {
	db *sql.DB
}

var _ credentials.Store = (*PostgresStore)(nil)

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *credentials.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(account.ID), account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAccountByID(ctx context.Context, userID id.UserID) (*credentials.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts WHERE id = $1`, uuid.UUID(userID))
	return scanAccount(row)
}

func (s *PostgresStore) FindAccountByEmail(ctx context.Context, email string) (*credentials.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts WHERE lower(email) = lower($1)`, email)
	return scanAccount(row)
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(userID), hash, at)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectRow(res, "account not found")
}

func (s *PostgresStore) FindRole(ctx context.Context, userID id.UserID) (*credentials.RoleAssignment, error) {
	var (
		raw  uuid.UUID
		role credentials.RoleAssignment
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, role, created_at FROM user_roles WHERE user_id = $1`,
		uuid.UUID(userID)).Scan(&raw, &role.Role, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	role.UserID = id.UserID(raw)
	return &role, nil
}

func (s *PostgresStore) InsertRole(ctx context.Context, role *credentials.RoleAssignment) error {
	return insertRole(ctx, s.db, role)
}

func (s *PostgresStore) UpdateRole(ctx context.Context, userID id.UserID, role credentials.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE user_roles SET role = $2 WHERE user_id = $1`,
		uuid.UUID(userID), string(role))
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return expectRow(res, "role not found")
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]credentials.UserListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.user_id, r.role, COALESCE(a.email, ''), r.created_at
		FROM user_roles r LEFT JOIN accounts a ON a.id = r.user_id
		ORDER BY r.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []credentials.UserListing
	for rows.Next() {
		var (
			raw     uuid.UUID
			listing credentials.UserListing
		)
		if err := rows.Scan(&raw, &listing.Role, &listing.Email, &listing.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user listing: %w", err)
		}
		listing.UserID = id.UserID(raw)
		out = append(out, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindMFA(ctx context.Context, userID id.UserID) (*credentials.MFASettings, error) {
	var (
		raw      uuid.UUID
		settings credentials.MFASettings
		secret   sql.NullString
		code     sql.NullString
		expires  sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, mfa_type, totp_secret, is_verified, email_code,
		       email_code_expires_at, email_code_attempts, created_at, updated_at
		FROM user_mfa_settings WHERE user_id = $1`, uuid.UUID(userID)).Scan(
		&raw, &settings.Type, &secret, &settings.IsVerified, &code,
		&expires, &settings.EmailCodeAttempts, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mfa settings not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find mfa settings: %w", err)
	}
	settings.UserID = id.UserID(raw)
	settings.TOTPSecret = secret.String
	settings.EmailCode = code.String
	if expires.Valid {
		t := expires.Time
		settings.EmailCodeExpiresAt = &t
	}
	return &settings, nil
}

func (s *PostgresStore) SaveMFA(ctx context.Context, settings *credentials.MFASettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_mfa_settings
			(user_id, mfa_type, totp_secret, is_verified, email_code, email_code_expires_at,
			 email_code_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, NULL, 0, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			mfa_type = EXCLUDED.mfa_type,
			totp_secret = EXCLUDED.totp_secret,
			is_verified = EXCLUDED.is_verified,
			email_code = NULL,
			email_code_expires_at = NULL,
			email_code_attempts = 0,
			updated_at = EXCLUDED.updated_at`,
		uuid.UUID(settings.UserID), string(settings.Type), nullString(settings.TOTPSecret),
		settings.IsVerified, settings.CreatedAt, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save mfa settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetEmailCode(ctx context.Context, userID id.UserID, code string, expiresAt, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_mfa_settings
			(user_id, mfa_type, is_verified, email_code, email_code_expires_at,
			 email_code_attempts, created_at, updated_at)
		VALUES ($1, 'email', false, $2, $3, 0, $4, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			email_code = EXCLUDED.email_code,
			email_code_expires_at = EXCLUDED.email_code_expires_at,
			email_code_attempts = 0,
			updated_at = EXCLUDED.updated_at`,
		uuid.UUID(userID), code, expiresAt, now)
	if err != nil {
		return fmt.Errorf("set email code: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementEmailAttempts(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_mfa_settings SET email_code_attempts = email_code_attempts + 1
		WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("increment email attempts: %w", err)
	}
	return expectRow(res, "mfa settings not found")
}

func (s *PostgresStore) ConsumeEmailCode(ctx context.Context, userID id.UserID, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_mfa_settings
		SET email_code = NULL, email_code_expires_at = NULL, email_code_attempts = 0
		WHERE user_id = $1 AND email_code = $2`, uuid.UUID(userID), code)
	if err != nil {
		return fmt.Errorf("consume email code: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume email code rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("email code already consumed: %w", sentinel.ErrStale)
	}
	return nil
}

func (s *PostgresStore) MarkMFAVerified(ctx context.Context, userID id.UserID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_mfa_settings SET is_verified = true, updated_at = $2 WHERE user_id = $1`,
		uuid.UUID(userID), at)
	if err != nil {
		return fmt.Errorf("mark mfa verified: %w", err)
	}
	return expectRow(res, "mfa settings not found")
}

func (s *PostgresStore) ClearStaleEmailCodes(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_mfa_settings
		SET email_code = NULL, email_code_expires_at = NULL, email_code_attempts = 0
		WHERE email_code_expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear stale email codes: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) CreateInvitation(ctx context.Context, inv *credentials.Invitation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invitations (id, email, role, token, expires_at, used, deleted, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, false, false, $6, $7)`,
		uuid.UUID(inv.ID), inv.Email, string(inv.Role), inv.Token, inv.ExpiresAt,
		uuid.UUID(inv.InvitedBy), inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invitation token collision: %w", sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

const invitationColumns = `id, email, role, token, expires_at, used, deleted, invited_by, created_at`

func (s *PostgresStore) FindRedeemableInvitation(ctx context.Context, token string, now time.Time) (*credentials.Invitation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE token = $1 AND used = false AND deleted = false AND expires_at > $2`, token, now)
	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return inv, nil
}

func (s *PostgresStore) ListInvitations(ctx context.Context) ([]*credentials.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []*credentials.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkInvitationDeleted(ctx context.Context, invitationID id.InvitationID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE invitations SET deleted = true WHERE id = $1`,
		uuid.UUID(invitationID))
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return expectRow(res, "invitation not found")
}

func (s *PostgresStore) AcceptInvitation(ctx context.Context, invitationID id.InvitationID, role *credentials.RoleAssignment, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE invitations SET used = true
		WHERE id = $1 AND used = false AND deleted = false AND expires_at > $2`,
		uuid.UUID(invitationID), now)
	if err != nil {
		return fmt.Errorf("mark invitation used: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invitation used rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invitation no longer redeemable: %w", sentinel.ErrAlreadyUsed)
	}

	if err := insertRole(ctx, tx, role); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit accept tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) PurgeInvitations(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge invitations: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) DeleteUser(ctx context.Context, userID id.UserID, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	uid := uuid.UUID(userID)
	steps := []struct {
		name  string
		query string
		args  []any
	}{
		{"delete mfa settings", `DELETE FROM user_mfa_settings WHERE user_id = $1`, []any{uid}},
		{"delete role", `DELETE FROM user_roles WHERE user_id = $1`, []any{uid}},
		{"mark invitations deleted", `UPDATE invitations SET deleted = true WHERE lower(email) = lower($1)`, []any{email}},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, step.args...); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := expectRow(res, "account not found"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user tx: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func insertRole(ctx context.Context, db execer, role *credentials.RoleAssignment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role, created_at) VALUES ($1, $2, $3)`,
		uuid.UUID(role.UserID), string(role.Role), role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role already assigned: %w", sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func scanAccount(row scanner) (*credentials.Account, error) {
	var (
		raw     uuid.UUID
		account credentials.Account
	)
	if err := row.Scan(&raw, &account.Email, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.ID = id.UserID(raw)
	return &account, nil
}

func scanInvitation(row scanner) (*credentials.Invitation, error) {
	var (
		rawID, rawInviter uuid.UUID
		inv               credentials.Invitation
	)
	if err := row.Scan(&rawID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt,
		&inv.Used, &inv.Deleted, &rawInviter, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.ID = id.InvitationID(rawID)
	inv.InvitedBy = id.UserID(rawInviter)
	return &inv, nil
}

func expectRow(res sql.Result, notFound string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", notFound, sentinel.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
