package service

import (
    "crypto/rand"
    "encoding/hex"
    "errors"
    "fmt"
    "strings"
    "time"

    "golang.org/x/crypto/bcrypt"

    "github.com/Kenneson972/allinclusive/internal/model"
    "github.com/Kenneson972/allinclusive/internal/utils"
)

// AuthGate issues and verifies administrator bearer tokens.  The
// credential table is fixed at construction and the gate keeps no other
// state, so one instance is shared by every request.
type AuthGate struct {
    secret    string
    creds     map[string]model.AdminCredential
    dummyHash string
    now       func() time.Time
}

// NewAuthGate builds a gate over the given credentials.  A missing
// signing secret or an empty credential table is a startup error.
func NewAuthGate(secret string, creds []model.AdminCredential) (*AuthGate, error) {
    const op = "service.NewAuthGate"
    if strings.TrimSpace(secret) == "" {
        return nil, fmt.Errorf("%s: missing JWT signing secret", op)
    }
    if len(creds) == 0 {
        return nil, fmt.Errorf("%s: no administrator credentials", op)
    }
    table := make(map[string]model.AdminCredential, len(creds))
    cost := bcrypt.MinCost
    for _, c := range creds {
        if c.Username == "" || c.Role == "" {
            return nil, fmt.Errorf("%s: credential without username or role", op)
        }
        if _, dup := table[c.Username]; dup {
            return nil, fmt.Errorf("%s: duplicate administrator %q", op, c.Username)
        }
        hc, err := bcrypt.Cost([]byte(c.PasswordHash))
        if err != nil {
            return nil, fmt.Errorf("%s: %s: %w", op, c.Username, err)
        }
        cost = max(cost, hc)
        table[c.Username] = c
    }
    // Unknown usernames are checked against this hash so a failed login
    // takes the same time whether or not the user exists.
    dummy, err := randomPassword()
    if err != nil {
        return nil, fmt.Errorf("%s: %w", op, err)
    }
    dummyHash, err := utils.HashPassword(dummy, cost)
    if err != nil {
        return nil, fmt.Errorf("%s: %w", op, err)
    }
    return &AuthGate{secret: secret, creds: table, dummyHash: dummyHash, now: time.Now}, nil
}

// Authenticate checks a username and password.  A mismatch is an ordinary
// outcome reported as false; unknown users and wrong passwords are
// indistinguishable to the caller.
func (g *AuthGate) Authenticate(username, password string) (model.AdminCredential, bool) {
    cred, ok := g.creds[username]
    if !ok {
        utils.VerifyPassword(g.dummyHash, password)
        return model.AdminCredential{}, false
    }
    if !utils.VerifyPassword(cred.PasswordHash, password) {
        return model.AdminCredential{}, false
    }
    return cred, true
}

// IssueToken signs a token for cred valid for utils.AccessTokenTTL.
func (g *AuthGate) IssueToken(cred model.AdminCredential) (utils.AccessToken, error) {
    const op = "service.AuthGate.IssueToken"
    if _, ok := g.creds[cred.Username]; !ok {
        return utils.AccessToken{}, fmt.Errorf("%s: unknown administrator %q", op, cred.Username)
    }
    tok, err := utils.NewAccessToken(g.secret, cred.Username, cred.Role, g.now())
    if err != nil {
        return utils.AccessToken{}, fmt.Errorf("%s: %w", op, err)
    }
    return tok, nil
}

// Identify resolves a token to the credential it was issued for.  Tokens
// whose subject is no longer in the table, or whose role differs from the
// table entry, are rejected.
func (g *AuthGate) Identify(raw string) (model.AdminCredential, bool) {
    claims, err := utils.ParseAccessToken(g.secret, raw)
    if err != nil {
        return model.AdminCredential{}, false
    }
    cred, ok := g.creds[claims.Subject]
    if !ok || cred.Role != claims.Role {
        return model.AdminCredential{}, false
    }
    return cred, true
}

// VerifyToken returns the username a valid token was issued to.
func (g *AuthGate) VerifyToken(raw string) (string, bool) {
    cred, ok := g.Identify(raw)
    if !ok {
        return "", false
    }
    return cred.Username, true
}

func randomPassword() (string, error) {
    buf := make([]byte, 16)
    if _, err := rand.Read(buf); err != nil {
        return "", errors.Join(errors.New("generate dummy password"), err)
    }
    return hex.EncodeToString(buf), nil
}
