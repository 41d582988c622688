package pricefeed

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// SettingFeedToken is the engine_setting key holding the encrypted feed
// API token.
const SettingFeedToken = "feed_api_token"

// TokenStore keeps the feed API token fernet-encrypted at rest in the
// settings table. The fernet key comes from the environment; the token
// itself never touches the environment or logs.
type TokenStore struct {
	settings *repository.SettingRepository
	key      *fernet.Key
}

// NewTokenStore creates a token store from a base64 fernet key.
func NewTokenStore(settings *repository.SettingRepository, encodedKey string) (*TokenStore, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}

	return &TokenStore{settings: settings, key: key}, nil
}

// Save encrypts and stores the feed token.
func (s *TokenStore) Save(token string) error {
	encrypted, err := fernet.EncryptAndSign([]byte(token), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt feed token: %w", err)
	}

	return s.settings.Set(SettingFeedToken, string(encrypted))
}

// Load decrypts the stored feed token. Returns
// apperrors.ErrFeedTokenNotConfigured when no token has been saved, and
// an error when the ciphertext does not verify against the key.
func (s *TokenStore) Load() (string, error) {
	encrypted, ok, err := s.settings.Get(SettingFeedToken)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.ErrFeedTokenNotConfigured
	}

	// TTL 0: stored tokens do not expire, rotation happens via Save.
	token := fernet.VerifyAndDecrypt([]byte(encrypted), 0, []*fernet.Key{s.key})
	if token == nil {
		return "", fmt.Errorf("stored feed token failed verification")
	}

	return string(token), nil
}
