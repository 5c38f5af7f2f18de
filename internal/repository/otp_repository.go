package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

// OTPRepository stores hashed one-time codes in Redis with a TTL. Codes are
// single-use: Consume removes the value atomically on read.
type OTPRepository struct {
	client *redis.Client
}

// NewOTPRepository constructs the repository.
func NewOTPRepository(client *redis.Client) *OTPRepository {
	return &OTPRepository{client: client}
}

func otpKey(email string) string {
	return "otp:" + email
}

// Save stores the bcrypt hash of the code, replacing any outstanding one.
func (r *OTPRepository) Save(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	if err := r.client.Set(ctx, otpKey(email), codeHash, ttl).Err(); err != nil {
		return fmt.Errorf("store otp for %s: %w", email, err)
	}
	return nil
}

// Consume fetches and deletes the stored hash in one call. A missing key
// means the code expired or was never issued.
func (r *OTPRepository) Consume(ctx context.Context, email string) (string, error) {
	hash, err := r.client.GetDel(ctx, otpKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", appErrors.ErrInvalidOTP
		}
		return "", fmt.Errorf("consume otp for %s: %w", email, err)
	}
	return hash, nil
}
