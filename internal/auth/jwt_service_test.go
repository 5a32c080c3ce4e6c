package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, ttl := range []time.Duration{0, time.Hour} {
		svc := NewJWTService("test-secret", ttl)
		for i := 0; i < 20; i++ {
			id := uuid.New()
			token, err := svc.Issue(id)
			require.NoError(t, err)

			got, err := svc.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, id, got)
		}
	}
}

func TestJWTService_NoExpiryWhenTTLZero(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret", 0)
	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestJWTService_AnyCorruptedByteFails(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret", time.Hour)
	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i := 0; i < len(token); i++ {
		for _, repl := range []byte{alphabet[(strings.IndexByte(alphabet, token[i])+1)%len(alphabet)], '.', '!'} {
			if repl == token[i] {
				continue
			}
			corrupted := []byte(token)
			corrupted[i] = repl

			_, err := svc.Verify(string(corrupted))
			assert.ErrorIs(t, err, ErrInvalidToken, "byte %d replaced with %q", i, repl)
		}
	}
}

func TestJWTService_Rejects(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("right-secret", time.Hour)
	id := uuid.New()

	wrongSecret, err := NewJWTService("wrong-secret", time.Hour).Issue(id)
	require.NoError(t, err)

	expiredSvc := NewJWTService("right-secret", time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.Issue(id)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: id.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "not-a-uuid"}).
		SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"malformed":    "not.a.jwt",
		"two segments": "abc.def",
		"wrong secret": wrongSecret,
		"expired":      expired,
		"alg none":     none,
		"bad uid":      badUID,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
