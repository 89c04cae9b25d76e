package broker

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// roomClaims is the JWT payload minted for a room participant. Field names
// follow the grant vocabulary described in spec §6: room, identity and a
// pair of publish/subscribe booleans alongside the standard registered
// claims (exp, iat, sub).
type roomClaims struct {
	Room         string `json:"room"`
	CanPublish   bool   `json:"can_publish"`
	CanSubscribe bool   `json:"can_subscribe"`
	jwt.RegisteredClaims
}

// signRoomToken signs an HS256 room credential with secret.
func signRoomToken(secret []byte, room, identity string, ttl time.Duration, grants Grants) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := roomClaims{
		Room:         room,
		CanPublish:   grants.CanPublish,
		CanSubscribe: grants.CanSubscribe,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("broker: sign room token: %w", err)
	}
	return signed, expiresAt, nil
}

// parseRoomToken validates a room token signed by signRoomToken and returns
// its claims. Unexported: used only by the broker's own tests to assert on
// what MintRoomToken actually produced.
func parseRoomToken(secret []byte, signed string) (*roomClaims, error) {
	parsed, err := jwt.ParseWithClaims(signed, &roomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("broker: parse room token: %w", err)
	}
	claims, ok := parsed.Claims.(*roomClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("broker: parse room token: invalid token")
	}
	return claims, nil
}
