package usecase

import (
	"context"

	"job-portal-backend/internal/domain"
)

// JoinEvents fans every auth event out to all sinks, in order.
func JoinEvents(sinks ...domain.AuthEvents) domain.AuthEvents {
	return multiEvents(sinks)
}

type multiEvents []domain.AuthEvents

func (m multiEvents) Registered(ctx context.Context, email string) {
	for _, s := range m {
		s.Registered(ctx, email)
	}
}

func (m multiEvents) RegisterConflict(ctx context.Context, email string) {
	for _, s := range m {
		s.RegisterConflict(ctx, email)
	}
}

func (m multiEvents) LoginSucceeded(ctx context.Context, email string) {
	for _, s := range m {
		s.LoginSucceeded(ctx, email)
	}
}

func (m multiEvents) LoginFailed(ctx context.Context, email, reason string) {
	for _, s := range m {
		s.LoginFailed(ctx, email, reason)
	}
}

func (m multiEvents) ProfileUpdated(ctx context.Context, accountID string) {
	for _, s := range m {
		s.ProfileUpdated(ctx, accountID)
	}
}
