package mailer

import (
	"testing"
	"time"

	"ai-fitcoach-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestNewEmailServiceWithoutHostIsNoop(t *testing.T) {
	svc := NewEmailService("", 587, "", "", "FitCoach", "http://localhost", logger.NewNopLogger())

	_, isNoop := svc.(*noopEmailService)
	assert.True(t, isNoop)
	assert.NoError(t, svc.SendSubscriptionActivated("a@fit.io", "Pro", time.Now()))
}

func TestNewEmailServiceWithHostUsesDialer(t *testing.T) {
	svc := NewEmailService("smtp.example.com", 587, "coach@example.com", "pw", "FitCoach", "http://localhost", logger.NewNopLogger())

	real, ok := svc.(*emailService)
	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com", real.dialer.Host)
	assert.Equal(t, "coach@example.com", real.senderEmail)
}
