package authtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const algorithm = "HS256"

// Config holds the token settings loaded from the environment.
type Config struct {
	Secret string        `env:"AUTH_TOKEN_SECRET,required"`
	TTL    time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"720h"`
}

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims are the registered claims this service uses. Subject carries
// the user UUID.
type Claims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// UserID parses the subject claim as a user UUID.
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidSubject
	}
	return id, nil
}

// Service signs and verifies tokens with a single HS256 key.
type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// New creates a token service. The key should be at least 32 bytes.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{key: []byte(cfg.Secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the given user, valid for the configured TTL.
func (s *Service) Issue(userID uuid.UUID) (string, error) {
	now := s.now()
	return s.sign(Claims{
		Subject:   userID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
}

func (s *Service) sign(claims Claims) (string, error) {
	headerJSON, err := json.Marshal(header{Type: "JWT", Algorithm: algorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := encodeSegment(headerJSON) + "." + encodeSegment(claimsJSON)
	return payload + "." + s.signature(payload), nil
}

// Parse verifies the signature and temporal claims and returns the
// parsed claims. Signature verification happens before any decoding
// so malformed payloads from unauthenticated callers are never
// unmarshaled.
func (s *Service) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	expected := s.signature(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	headerJSON, err := decodeSegment(parts[0])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil || hdr.Algorithm != algorithm {
		return Claims{}, ErrInvalidToken
	}

	claimsJSON, err := decodeSegment(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	if claims.ExpiresAt > 0 && s.now().Unix() > claims.ExpiresAt {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func (s *Service) signature(payload string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(payload))
	return encodeSegment(h.Sum(nil))
}

func encodeSegment(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
