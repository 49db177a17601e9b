package utils

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"fixify/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RedisCodeChannel delivers one-time completion codes to customers over SMS
// and stores them in the code Redis DB for later checking. It implements the
// booking service's CodeChannel contract.
type RedisCodeChannel struct {
	Client *redis.Client
}

func NewRedisCodeChannel() *RedisCodeChannel {
	return &RedisCodeChannel{Client: GetCodeCacheClient()}
}

// generateNumericCode returns a secure random code of the given digit length.
func generateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// Send generates a 6-digit code, stores it against the phone number with the
// code TTL, and pushes it through the SMS gateway. It returns a delivery
// session id.
func (ch *RedisCodeChannel) Send(ctx context.Context, phoneNumber string) (string, error) {
	code, err := generateNumericCode(6)
	if err != nil {
		return "", err
	}
	sessionID := uuid.New().String()

	key := "code:" + phoneNumber
	if err := ch.Client.Set(ctx, key, code, CodeTTL).Err(); err != nil {
		GetLogger().Error("Failed to store completion code", zap.Error(err))
		return "", fmt.Errorf("failed to store completion code: %w", err)
	}

	message := fmt.Sprintf("Your Fixify service completion code is %s. Share it with your professional only when the job is done.", code)
	if err := sendSMS(ctx, phoneNumber, message); err != nil {
		GetLogger().Error("Failed to send completion code", zap.Error(err))
		return "", err
	}

	GetLogger().Sugar().Infof("Sent completion code to %s (session %s, expires in %v)", phoneNumber, sessionID, CodeTTL)
	return sessionID, nil
}

// Check compares the provided code against the stored one. A match consumes
// the stored code.
func (ch *RedisCodeChannel) Check(ctx context.Context, phoneNumber, code string) (bool, error) {
	key := "code:" + phoneNumber
	stored, err := ch.Client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to retrieve completion code: %w", err)
	}
	if stored != code {
		return false, nil
	}
	if err := ch.Client.Del(ctx, key).Err(); err != nil {
		GetLogger().Error("Failed to delete completion code after match", zap.Error(err))
	}
	return true, nil
}

// sendSMS pushes a message through the configured gateway. Without a gateway
// URL (local development) the message is only logged.
func sendSMS(ctx context.Context, phoneNumber, message string) error {
	gw := config.AppConfig.SMSGatewayURL
	if gw == "" {
		GetLogger().Sugar().Infof("SMS (dev mode) to %s: %s", phoneNumber, message)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":   phoneNumber,
		"body": message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gw, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.AppConfig.SMSGatewayAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway call failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
