// Package token issues and verifies the session tokens that let a dropped
// player rebind to their seat on a fresh connection.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	RoomCode string `json:"room"`
	PlayerID string `json:"player"`
	jwt.RegisteredClaims
}

type Manager struct {
	secretKey []byte
	maxAge    time.Duration
}

func NewManager(secretKey string, maxAge time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secretKey),
		maxAge:    maxAge,
	}
}

// Issue signs a token binding a (room, player) pair.
func (m *Manager) Issue(roomCode, playerID string, now time.Time) (string, error) {
	claims := sessionClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify parses a token and yields the (room, player) identity it carries.
func (m *Manager) Verify(tokenString string) (roomCode, playerID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.RoomCode == "" || claims.PlayerID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.RoomCode, claims.PlayerID, nil
}
