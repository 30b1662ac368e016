package postgres

import (
	"context"
	"errors"

	"job-portal-backend/internal/domain"
	"job-portal-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const accountColumns = `id, fullname, email, phone_number, role, password_digest,
	profile_photo, bio, skills, resume, resume_original_name, created_at, updated_at`

type accountRepo struct {
	db DBTX
}

func NewAccountRepository(db DBTX) domain.AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		// ids are minted by Create; anything else cannot exist
		return nil, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *accountRepo) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Fullname, &a.Email, &a.PhoneNumber, &a.Role, &a.PasswordDigest,
		&a.Profile.ProfilePhoto, &a.Profile.Bio, &a.Profile.Skills, &a.Profile.Resume,
		&a.Profile.ResumeOriginalName, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.FromCollaborator(err)
	}
	if a.Profile.Skills == nil {
		a.Profile.Skills = []string{}
	}
	return &a, nil
}

// Create inserts the account with a fresh id. The unique index on email makes
// the duplicate check atomic under concurrent registrations.
func (r *accountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created := *account
	created.ID = uuid.NewString()
	if created.Profile.Skills == nil {
		created.Profile.Skills = []string{}
	}

	query := `INSERT INTO accounts (` + accountColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		created.ID, created.Fullname, created.Email, created.PhoneNumber, created.Role,
		created.PasswordDigest, created.Profile.ProfilePhoto, created.Profile.Bio,
		created.Profile.Skills, created.Profile.Resume, created.Profile.ResumeOriginalName,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *accountRepo) Save(ctx context.Context, account *domain.Account) error {
	query := `UPDATE accounts SET fullname = $2, email = $3, phone_number = $4,
              profile_photo = $5, bio = $6, skills = $7, resume = $8,
              resume_original_name = $9, updated_at = $10
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		account.ID, account.Fullname, account.Email, account.PhoneNumber,
		account.Profile.ProfilePhoto, account.Profile.Bio, account.Profile.Skills,
		account.Profile.Resume, account.Profile.ResumeOriginalName, account.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(domain.MsgAccountNotFound)
	}
	return nil
}

func (r *accountRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperror.Conflict(domain.MsgEmailTaken)
	}
	return apperror.FromCollaborator(err)
}
