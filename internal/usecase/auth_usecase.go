package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"job-portal-backend/internal/domain"
	"job-portal-backend/pkg/apperror"
	"job-portal-backend/pkg/password"
	"job-portal-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// AuthConfig carries the settings the auth flows read at request time.
type AuthConfig struct {
	PlaceholderAssetURL string
	CollaboratorTimeout time.Duration
}

// timingBurner is implemented by hashers able to spend a verification's worth
// of work without a real digest.
type timingBurner interface {
	Burn(ctx context.Context, plaintext string)
}

type authUsecase struct {
	accounts domain.AccountRepository
	hasher   domain.PasswordHasher
	issuer   domain.TokenIssuer
	uploader domain.AssetUploader
	events   domain.AuthEvents
	validate *validator.Validate
	log      *slog.Logger
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthUsecase(
	accounts domain.AccountRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	uploader domain.AssetUploader,
	events domain.AuthEvents,
	validate *validator.Validate,
	log *slog.Logger,
	cfg AuthConfig,
) domain.AuthUsecase {
	return &authUsecase{
		accounts: accounts,
		hasher:   hasher,
		issuer:   issuer,
		uploader: uploader,
		events:   events,
		validate: validate,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, in domain.RegisterInput) error {
	if err := u.validate.Struct(in); err != nil {
		return apperror.BadRequest(validation.Message(err))
	}

	existing, err := u.findByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		u.events.RegisterConflict(ctx, in.Email)
		return apperror.Conflict(domain.MsgEmailTaken)
	}

	digest, err := u.hasher.Hash(ctx, in.Password)
	if err != nil {
		return u.hashError(err)
	}

	now := u.now().UTC()
	account := &domain.Account{
		Fullname:       in.Fullname,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Role:           in.Role,
		PasswordDigest: digest,
		Profile: domain.Profile{
			ProfilePhoto: u.uploadPhoto(ctx, in.Photo),
			Skills:       []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	callCtx, cancel := u.collaboratorContext(ctx)
	defer cancel()
	created, err := u.accounts.Create(callCtx, account)
	if err != nil {
		// the unique index catches registrations that raced past the lookup
		if errors.Is(err, apperror.ErrConflict) {
			u.events.RegisterConflict(ctx, in.Email)
		}
		return apperror.FromCollaborator(err)
	}

	u.events.Registered(ctx, created.Email)
	u.log.InfoContext(ctx, "Account registered", "account_id", created.ID, "role", created.Role)
	return nil
}

// uploadPhoto never fails registration: a missing or failed upload stores the
// placeholder instead.
func (u *authUsecase) uploadPhoto(ctx context.Context, photo *domain.Asset) string {
	if photo == nil {
		return u.cfg.PlaceholderAssetURL
	}
	callCtx, cancel := u.collaboratorContext(ctx)
	defer cancel()

	url, err := u.uploader.Upload(callCtx, domain.FolderProfilePhotos, photo)
	if err != nil {
		u.log.WarnContext(ctx, "Profile photo upload failed, using placeholder", "error", err, "filename", photo.Filename)
		return u.cfg.PlaceholderAssetURL
	}
	return url
}

func (u *authUsecase) Login(ctx context.Context, in domain.LoginInput) (*domain.LoginResult, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	account, err := u.findByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		if b, ok := u.hasher.(timingBurner); ok {
			b.Burn(ctx, in.Password)
		}
		u.events.LoginFailed(ctx, in.Email, domain.ReasonUnknownEmail)
		return nil, apperror.Unauthorized(domain.MsgBadCredentials)
	}

	ok, err := u.hasher.Verify(ctx, in.Password, account.PasswordDigest)
	if err != nil {
		return nil, u.hashError(err)
	}
	if !ok {
		u.events.LoginFailed(ctx, in.Email, domain.ReasonBadPassword)
		return nil, apperror.Unauthorized(domain.MsgBadCredentials)
	}

	if in.Role != account.Role {
		u.events.LoginFailed(ctx, in.Email, domain.ReasonRoleMismatch)
		return nil, apperror.Unauthorized(domain.MsgRoleMismatch)
	}

	token, err := u.issuer.Issue(account.ID)
	if err != nil {
		u.log.ErrorContext(ctx, "Failed to issue session token", "account_id", account.ID, "error", err)
		return nil, apperror.Internal(err)
	}

	u.events.LoginSucceeded(ctx, account.Email)
	return &domain.LoginResult{Account: account.View(), Token: token}, nil
}

func (u *authUsecase) UpdateProfile(ctx context.Context, principalID string, in domain.UpdateProfileInput) (*domain.AccountView, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated(domain.MsgNotAuthenticated)
	}

	account, err := u.findByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NotFound(domain.MsgAccountNotFound)
	}

	if in.Fullname != "" {
		account.Fullname = in.Fullname
	}
	if in.Email != "" && in.Email != account.Email {
		other, err := u.findByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != account.ID {
			return nil, apperror.Conflict(domain.MsgEmailTaken)
		}
		account.Email = in.Email
	}
	if in.PhoneNumber != "" {
		account.PhoneNumber = in.PhoneNumber
	}
	if in.Bio != "" {
		account.Profile.Bio = in.Bio
	}
	if in.Skills != "" {
		account.Profile.Skills = ParseSkills(in.Skills)
	}

	if in.Resume != nil {
		callCtx, cancel := u.collaboratorContext(ctx)
		url, err := u.uploader.Upload(callCtx, domain.FolderResumes, in.Resume)
		cancel()
		if err != nil {
			u.log.ErrorContext(ctx, "Resume upload failed", "account_id", account.ID, "error", err)
			return nil, apperror.FromCollaborator(err)
		}
		account.Profile.Resume = url
		account.Profile.ResumeOriginalName = in.Resume.Filename
	}

	account.UpdatedAt = u.now().UTC()

	callCtx, cancel := u.collaboratorContext(ctx)
	defer cancel()
	if err := u.accounts.Save(callCtx, account); err != nil {
		return nil, apperror.FromCollaborator(err)
	}

	u.events.ProfileUpdated(ctx, account.ID)
	return account.View(), nil
}

func (u *authUsecase) GetCurrentAccount(ctx context.Context, principalID string) (*domain.AccountView, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated(domain.MsgNotAuthenticated)
	}
	account, err := u.findByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NotFound(domain.MsgAccountNotFound)
	}
	return account.View(), nil
}

// ParseSkills splits a comma separated list and trims every element. The
// result replaces the stored list wholesale.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		skills = append(skills, strings.TrimSpace(p))
	}
	return skills
}

func (u *authUsecase) findByEmail(ctx context.Context, email string) (*domain.Account, error) {
	callCtx, cancel := u.collaboratorContext(ctx)
	defer cancel()
	account, err := u.accounts.FindByEmail(callCtx, email)
	if err != nil {
		u.log.ErrorContext(ctx, "Account lookup by email failed", "error", err)
		return nil, apperror.FromCollaborator(err)
	}
	return account, nil
}

func (u *authUsecase) findByID(ctx context.Context, id string) (*domain.Account, error) {
	callCtx, cancel := u.collaboratorContext(ctx)
	defer cancel()
	account, err := u.accounts.FindByID(callCtx, id)
	if err != nil {
		u.log.ErrorContext(ctx, "Account lookup by id failed", "account_id", id, "error", err)
		return nil, apperror.FromCollaborator(err)
	}
	return account, nil
}

func (u *authUsecase) collaboratorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.cfg.CollaboratorTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.cfg.CollaboratorTimeout)
}

func (u *authUsecase) hashError(err error) error {
	switch {
	case errors.Is(err, password.ErrEmptyPassword):
		return apperror.BadRequest(validation.MissingFieldsMessage)
	case errors.Is(err, password.ErrPasswordTooLong):
		return apperror.BadRequest("Password must be at most 72 bytes")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.Timeout(err)
	default:
		return apperror.Internal(err)
	}
}
