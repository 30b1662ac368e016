package security

import (
	"context"
	"testing"

	"job-portal-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"jane@example.com": "j***@example.com",
		"ab":               "***",
		"x@example.com":    "***@example.com",
		"noatsign":         "***oatsign",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestLoginFailedEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := WithZap(zap.New(core), "job-portal", "test")

	ctx := context.WithValue(context.Background(), domain.KeyRequestID, "req-1")
	sl.LoginFailed(ctx, "jane@example.com", "bad_password")

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, string(EventLoginFailed), entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "j***@example.com", fields["subject_value"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, map[string]interface{}{"reason": "bad_password"}, fields["details"])
}

func TestSuccessEventsAreInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := WithZap(zap.New(core), "job-portal", "test")

	sl.Registered(context.Background(), "jane@example.com")
	sl.LoginSucceeded(context.Background(), "jane@example.com")
	sl.ProfileUpdated(context.Background(), "acc-1")

	for _, e := range logs.All() {
		assert.Equal(t, zapcore.InfoLevel, e.Level, e.Message)
	}
	assert.Equal(t, 3, logs.Len())
}

func TestHashValueIsStable(t *testing.T) {
	assert.Equal(t, HashValue("acc-1"), HashValue("acc-1"))
	assert.Len(t, HashValue("acc-1"), 16)
}
