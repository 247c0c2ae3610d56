package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
    now := time.Now()
    tok, err := NewAccessToken(testSecret, "admin", "admin", now)
    require.NoError(t, err)
    assert.WithinDuration(t, now.Add(AccessTokenTTL), tok.Exp, time.Second)

    claims, err := ParseAccessToken(testSecret, tok.Token)
    require.NoError(t, err)
    assert.Equal(t, "admin", claims.Subject)
    assert.Equal(t, "admin", claims.Role)
}

func TestParseAccessTokenRejects(t *testing.T) {
    valid, err := NewAccessToken(testSecret, "admin", "admin", time.Now())
    require.NoError(t, err)
    expired, err := NewAccessToken(testSecret, "admin", "admin", time.Now().Add(-AccessTokenTTL-time.Minute))
    require.NoError(t, err)
    none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
        "sub": "admin", "exp": time.Now().Add(time.Hour).Unix(),
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)
    noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).SignedString([]byte(testSecret))
    require.NoError(t, err)

    cases := map[string]struct {
        secret, raw string
    }{
        "garbage":      {testSecret, "garbage"},
        "empty":        {testSecret, ""},
        "wrong secret": {"other", valid.Token},
        "tampered":     {testSecret, valid.Token[:len(valid.Token)-2] + "xx"},
        "expired":      {testSecret, expired.Token},
        "alg none":     {testSecret, none},
        "missing exp":  {testSecret, noExp},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := ParseAccessToken(tc.secret, tc.raw)
            assert.ErrorIs(t, err, ErrInvalidToken)
        })
    }
}

func TestPasswordHashing(t *testing.T) {
    hash, err := HashPassword("khanelconcept2025", 4)
    require.NoError(t, err)
    assert.True(t, IsHash(hash))
    assert.False(t, IsHash("khanelconcept2025"))
    assert.True(t, VerifyPassword(hash, "khanelconcept2025"))
    assert.False(t, VerifyPassword(hash, "wrong"))
}
