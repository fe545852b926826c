package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the realtime session grant inside the credential
type Claims struct {
	SessionID uuid.UUID `json:"session_id"`
	PersonaID uuid.UUID `json:"persona_id"`
	VoiceID   string    `json:"voice_id"`
	jwt.RegisteredClaims
}

// Minter issues short-lived credentials accepted by the voice transport.
// Credentials are signed locally with the provider API secret, the same way
// a session token is minted for any media server, so session start never
// blocks on a provider round trip.
type Minter struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	issuer    string
}

// NewMinter creates a credential minter
func NewMinter(apiKey, apiSecret string, ttl time.Duration) *Minter {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Minter{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       ttl,
		issuer:    "persona-interview",
	}
}

// Mint generates a credential for one live session
func (m *Minter) Mint(sessionID, personaID uuid.UUID, voiceID string) (string, error) {
	if m.apiSecret == "" {
		return "", fmt.Errorf("realtime API secret not configured")
	}

	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		PersonaID: personaID,
		VoiceID:   voiceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   sessionID.String(),
			Audience:  jwt.ClaimStrings{m.apiKey},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.apiSecret))
}

// Validate parses and verifies a credential (used by tests and the mock transport)
func (m *Minter) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.apiSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid credential")
	}
	return claims, nil
}
