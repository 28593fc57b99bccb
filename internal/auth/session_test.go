// internal/auth/session_test.go
package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAuthenticate(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "1h")
	require.NoError(t, Init())
	assert.Equal(t, 3600, TOKEN_EXPIRE_TIME_SEC)

	token, err := CreateJWT("player-1", "ABCD")
	require.NoError(t, err)

	claims, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "ABCD", claims.RoomCode)
}

func TestNeverExpires(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	require.NoError(t, Init())
	assert.Zero(t, TOKEN_EXPIRE_TIME_SEC)

	token, err := CreateJWT("player-1", "ABCD")
	require.NoError(t, err)
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	_, hasExp := parsed.Claims.(jwt.MapClaims)["exp"]
	assert.False(t, hasExp)
}

func TestRejectsForeignAndExpiredTokens(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "")
	require.NoError(t, Init())

	_, otherKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{"sub": "intruder"}).SignedString(otherKey)
	require.NoError(t, err)
	_, err = AuthenticateJWT(forged)
	assert.Error(t, err)

	keyMu.RLock()
	key := privateKey
	keyMu.RUnlock()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{
		"sub": "player-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString(key)
	require.NoError(t, err)
	_, err = AuthenticateJWT(expired)
	assert.Error(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{"room": "ABCD"}).SignedString(key)
	require.NoError(t, err)
	_, err = AuthenticateJWT(noSub)
	assert.Error(t, err)

	_, err = AuthenticateJWT("not-a-token")
	assert.Error(t, err)
}

func TestMalformedExpireTime(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	assert.Error(t, Init())
}

func TestInitFromPath(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "")
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "key")
	pubPath := filepath.Join(dir, "key.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))
	require.NoError(t, InitFromPath(privPath, pubPath))

	token, err := CreateJWT("player-2", "WXYZ")
	require.NoError(t, err)
	claims, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "player-2", claims.PlayerID)

	require.NoError(t, os.WriteFile(pubPath, []byte("short"), 0o644))
	assert.Error(t, InitFromPath(privPath, pubPath))
	assert.Error(t, InitFromPath(filepath.Join(dir, "missing"), pubPath))
}
