package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cliptide/backend/internal/cache"
	"github.com/cliptide/backend/internal/models"
)

const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
)

var (
	ErrOTPExpired   = errors.New("verification code expired or not requested")
	ErrOTPMismatch  = errors.New("verification code is incorrect")
	ErrOTPExhausted = errors.New("too many failed attempts, request a new code")
)

// SendOTP generates a 6-digit code, stores its hash in Redis and emails it.
// Only the SHA-256 of the code is stored, so a Redis dump never leaks
// usable codes.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	if s.redis == nil || s.emailer == nil {
		return errors.New("email verification is not configured")
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.redis.SetEx(ctx, otpKey(email), hashOTP(code), otpTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	if err := s.redis.SetEx(ctx, otpAttemptsKey(email), 0, otpTTL); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}

	if err := s.emailer.SendOTPEmail(email, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// VerifyOTP checks a submitted code and marks the user's email verified.
// The stored code is consumed on success and after too many failures.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	if s.redis == nil {
		return errors.New("email verification is not configured")
	}

	stored, err := s.redis.Get(ctx, otpKey(email))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ErrOTPExpired
		}
		return fmt.Errorf("failed to read code: %w", err)
	}

	attempts, err := s.redis.IncrBy(ctx, otpAttemptsKey(email), 1)
	if err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}
	if attempts > otpMaxAttempts {
		_ = s.redis.Del(ctx, otpKey(email), otpAttemptsKey(email))
		return ErrOTPExhausted
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashOTP(code))) != 1 {
		return ErrOTPMismatch
	}

	_ = s.redis.Del(ctx, otpKey(email), otpAttemptsKey(email))

	err = s.db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).
		Update("email_verified", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

func otpKey(email string) string {
	return "otp:" + email
}

func otpAttemptsKey(email string) string {
	return "otp_attempts:" + email
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// generateOTPCode returns a random 6-digit code with leading zeros kept
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
