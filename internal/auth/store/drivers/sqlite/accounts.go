package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/store"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, tenant, firstname, lastname, email, password_hash,
	enable_2fa, otp, otp_expiry, is_verified, created_at, updated_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		id, tenant, firstname, lastname, email, passwordHash string
		enable2FA, verified                                  bool
		otp                                                  sql.NullString
		otpExpiry                                            sql.NullTime
		createdAt, updatedAt                                 time.Time
	)
	err := row.Scan(
		&id, &tenant, &firstname, &lastname, &email, &passwordHash,
		&enable2FA, &otp, &otpExpiry, &verified, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(
		id, tenant, firstname, lastname, email, passwordHash,
		enable2FA, otp, otpExpiry, verified, createdAt, updatedAt,
	), nil
}

func (r *accountsRepo) GetByEmail(
	ctx context.Context,
	tenant domain.Tenant,
	email string,
) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant = ? AND email = ?`,
		tenant.String(), email,
	)
	return scanAccount(row)
}

func (r *accountsRepo) GetByID(
	ctx context.Context,
	tenant domain.Tenant,
	id string,
) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant = ? AND id = ?`,
		tenant.String(), id,
	)
	return scanAccount(row)
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (
			id, tenant, firstname, lastname, email, password_hash,
			enable_2fa, otp, otp_expiry, is_verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Tenant.String(), a.Firstname, a.Lastname, a.Email, a.PasswordHash,
		a.Enable2FA, mapOptionalString(a.OTP), mapOptionalTime(a.OTPExpiry),
		a.Verified, now, now,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) SetPendingOTP(
	ctx context.Context,
	tenant domain.Tenant,
	id, code string,
	expiry time.Time,
) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts
		 SET otp = ?, otp_expiry = ?, updated_at = ?
		 WHERE tenant = ? AND id = ?`,
		code, expiry, time.Now().UTC(), tenant.String(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) ClearPendingOTP(
	ctx context.Context,
	tenant domain.Tenant,
	id string,
	markVerified bool,
) error {
	query := `UPDATE accounts
		 SET otp = NULL, otp_expiry = NULL, updated_at = ?
		 WHERE tenant = ? AND id = ?`
	if markVerified {
		query = `UPDATE accounts
		 SET otp = NULL, otp_expiry = NULL, is_verified = 1, updated_at = ?
		 WHERE tenant = ? AND id = ?`
	}

	res, err := r.q.ExecContext(ctx, query, time.Now().UTC(), tenant.String(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) ListByTenant(
	ctx context.Context,
	tenant domain.Tenant,
) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant = ? ORDER BY created_at ASC, id ASC`,
		tenant.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var (
			id, t, firstname, lastname, email, passwordHash string
			enable2FA, verified                             bool
			otp                                             sql.NullString
			otpExpiry                                       sql.NullTime
			createdAt, updatedAt                            time.Time
		)
		if err := rows.Scan(
			&id, &t, &firstname, &lastname, &email, &passwordHash,
			&enable2FA, &otp, &otpExpiry, &verified, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, mapAccount(
			id, t, firstname, lastname, email, passwordHash,
			enable2FA, otp, otpExpiry, verified, createdAt, updatedAt,
		))
	}
	return accounts, rows.Err()
}

// requireRow turns an update that matched nothing into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
