package domain

import (
	"context"
	"time"
)

// Account is the only entity owned by the auth core. PasswordDigest never
// leaves the process: it carries no JSON tag and View drops it.
type Account struct {
	ID             string    `json:"_id"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	Role           string    `json:"role"`
	PasswordDigest string    `json:"-"`
	Profile        Profile   `json:"profile"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Profile struct {
	ProfilePhoto       string   `json:"profilePhoto"`
	Bio                string   `json:"bio"`
	Skills             []string `json:"skills"`
	Resume             string   `json:"resume"`
	ResumeOriginalName string   `json:"resumeOriginalName"`
}

// AccountView is the redacted projection returned to clients.
type AccountView struct {
	ID          string  `json:"_id"`
	Fullname    string  `json:"fullname"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Role        string  `json:"role"`
	Profile     Profile `json:"profile"`
}

func (a *Account) View() *AccountView {
	profile := a.Profile
	profile.Skills = append([]string{}, a.Profile.Skills...)
	return &AccountView{
		ID:          a.ID,
		Fullname:    a.Fullname,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		Role:        a.Role,
		Profile:     profile,
	}
}

// AccountRepository is the Account Directory. Find methods return (nil, nil)
// when nothing matches. Create must reject a duplicate email atomically.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Save(ctx context.Context, account *Account) error
	Ping(ctx context.Context) error
}

// Asset is an uploaded file buffered in memory.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AssetUploader stores an asset and returns its public URL.
type AssetUploader interface {
	Upload(ctx context.Context, folder string, asset *Asset) (string, error)
}

// PasswordHasher turns secrets into digests and back-checks them.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports false for any mismatch, malformed digests included.
	// It only errors when ctx ends before the comparison could run.
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenIssuer mints and checks session tokens bound to a principal id.
type TokenIssuer interface {
	Issue(principalID string) (string, error)
	Verify(token string) (string, error)
}

// AuthEvents receives security relevant outcomes of the auth flows.
type AuthEvents interface {
	Registered(ctx context.Context, email string)
	RegisterConflict(ctx context.Context, email string)
	LoginSucceeded(ctx context.Context, email string)
	LoginFailed(ctx context.Context, email, reason string)
	ProfileUpdated(ctx context.Context, accountID string)
}

type RegisterInput struct {
	Fullname    string `validate:"required"`
	Email       string `validate:"required"`
	PhoneNumber string `validate:"required"`
	Password    string `validate:"required,max=72"`
	Role        string `validate:"required,account_role"`
	Photo       *Asset
}

type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
	Role     string `validate:"required"`
}

// UpdateProfileInput carries optional fields; an empty string means "leave as is".
type UpdateProfileInput struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Bio         string
	Skills      string
	Resume      *Asset
}

type LoginResult struct {
	Account *AccountView
	Token   string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) error
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	UpdateProfile(ctx context.Context, principalID string, in UpdateProfileInput) (*AccountView, error)
	GetCurrentAccount(ctx context.Context, principalID string) (*AccountView, error)
}
