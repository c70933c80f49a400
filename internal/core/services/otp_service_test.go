package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOTPService(t *testing.T) *OTPService {
	db := setupTestDB(t)
	return NewOTPService(repositories.NewOTPRepository(db))
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestOTPIssueAndVerify(t *testing.T) {
	svc := newOTPService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "0912345678", domain.PurposeLogin, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, otp.ID)
	require.Len(t, otp.Code, 6)

	subject, err := svc.Verify(ctx, otp.ID, otp.Code)
	require.NoError(t, err)
	assert.Equal(t, "0912345678", subject)
}

func TestOTPVerifyConsumesExactlyOnce(t *testing.T) {
	svc := newOTPService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "0912345678", domain.PurposeLogin, time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, otp.ID, otp.Code)
	require.NoError(t, err)

	// The same credential cannot be redeemed twice
	_, err = svc.Verify(ctx, otp.ID, otp.Code)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPVerifyExpired(t *testing.T) {
	svc := newOTPService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "0912345678", domain.PurposeLogin, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, otp.ID, otp.Code)
	assert.ErrorIs(t, err, domain.ErrExpired)

	// An expired credential is rejected, never extended: the right code
	// still fails
	_, err = svc.Verify(ctx, otp.ID, otp.Code)
	assert.ErrorIs(t, err, domain.ErrExpired)
}

func TestOTPVerifyMismatch(t *testing.T) {
	svc := newOTPService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "0912345678", domain.PurposeLogin, time.Minute)
	require.NoError(t, err)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "000001"
	}

	_, err = svc.Verify(ctx, otp.ID, wrong)
	assert.ErrorIs(t, err, domain.ErrMismatch)

	// A failed attempt does not consume the credential
	subject, err := svc.Verify(ctx, otp.ID, otp.Code)
	require.NoError(t, err)
	assert.Equal(t, "0912345678", subject)
}

func TestOTPVerifyUnknownID(t *testing.T) {
	svc := newOTPService(t)

	_, err := svc.Verify(context.Background(), "no-such-id", "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
