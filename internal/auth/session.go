// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey are used for signing and verifying session tokens.
var (
	keyMu      sync.RWMutex
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// TOKEN_EXPIRE_TIME_SEC indicates how many seconds until a token expires (0 => never).
	TOKEN_EXPIRE_TIME_SEC int
)

// ErrNoKeys is returned when tokens are minted or checked before Init.
var ErrNoKeys = errors.New("auth keys are not initialized")

// SessionClaims is what a session token vouches for.
type SessionClaims struct {
	PlayerID string
	RoomCode string
}

// parseTokenExpireTime reads TOKEN_EXPIRE_TIME ("never", "0", or a Go duration).
func parseTokenExpireTime() error {
	duration := os.Getenv("TOKEN_EXPIRE_TIME")
	if duration == "never" || duration == "0" || duration == "" {
		TOKEN_EXPIRE_TIME_SEC = 0
		return nil
	}
	d, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("failed to parse token expire time: %w", err)
	}
	TOKEN_EXPIRE_TIME_SEC = int(d.Seconds())
	return nil
}

// Init generates a fresh ed25519 key pair at runtime and sets the token expiration.
// Tokens do not survive a restart of the process that minted them.
func Init() error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	setKeys(priv, pub)
	return parseTokenExpireTime()
}

// InitFromPath reads raw ed25519 private/public keys from file and sets the token expiration.
func InitFromPath(privatePath, publicPath string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return errors.New("key files are not raw ed25519 keys")
	}
	setKeys(ed25519.PrivateKey(privateKeyData), ed25519.PublicKey(publicKeyData))
	return parseTokenExpireTime()
}

func setKeys(priv ed25519.PrivateKey, pub ed25519.PublicKey) {
	keyMu.Lock()
	defer keyMu.Unlock()
	privateKey, publicKey = priv, pub
}

// CreateJWT mints a session token with "sub" = playerID and "room" = roomCode. An exp
// claim is only set when TOKEN_EXPIRE_TIME_SEC is positive.
func CreateJWT(playerID, roomCode string) (string, error) {
	keyMu.RLock()
	key := privateKey
	keyMu.RUnlock()
	if key == nil {
		return "", ErrNoKeys
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  playerID,
		"room": roomCode,
		"iat":  now.Unix(),
	}
	if TOKEN_EXPIRE_TIME_SEC > 0 {
		claims["exp"] = now.Add(time.Duration(TOKEN_EXPIRE_TIME_SEC) * time.Second).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(key)
}

// AuthenticateJWT verifies a token and returns the session it was minted for.
func AuthenticateJWT(tokenString string) (*SessionClaims, error) {
	keyMu.RLock()
	key := publicKey
	keyMu.RUnlock()
	if key == nil {
		return nil, ErrNoKeys
	}

	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid jwt claims")
	}
	playerID, ok := claims["sub"].(string)
	if !ok || playerID == "" {
		return nil, fmt.Errorf("missing sub in jwt")
	}
	roomCode, _ := claims["room"].(string)
	return &SessionClaims{PlayerID: playerID, RoomCode: roomCode}, nil
}
