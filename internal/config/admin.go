package config

import (
    "fmt"
    "os"
    "strings"

    "github.com/Kenneson972/allinclusive/internal/model"
    "github.com/Kenneson972/allinclusive/internal/utils"
)

// AdminEnv carries the administrator settings as read from the
// environment.  ADMIN_USERS takes precedence; it is a comma separated
// list of username:role:bcrypthash entries.  Otherwise a single
// administrator is built from ADMIN_USERNAME and either
// ADMIN_PASSWORD_HASH or the plain ADMIN_PASSWORD, which is hashed at
// startup.
type AdminEnv struct {
    Users        string
    Username     string
    PasswordHash string
    Password     string
}

func loadAdminEnv() AdminEnv {
    return AdminEnv{
        Users:        os.Getenv("ADMIN_USERS"),
        Username:     envStr("ADMIN_USERNAME", "admin"),
        PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
        Password:     os.Getenv("ADMIN_PASSWORD"),
    }
}

// Credentials turns the settings into the fixed administrator table.  It
// fails when no usable credential is configured or an entry is malformed.
func (a AdminEnv) Credentials(bcryptCost int) ([]model.AdminCredential, error) {
    if strings.TrimSpace(a.Users) != "" {
        return ParseAdminUsers(a.Users)
    }
    username := strings.TrimSpace(a.Username)
    if username == "" {
        return nil, fmt.Errorf("admin: empty ADMIN_USERNAME")
    }
    hash := strings.TrimSpace(a.PasswordHash)
    switch {
    case hash != "":
        if !utils.IsHash(hash) {
            return nil, fmt.Errorf("admin: ADMIN_PASSWORD_HASH is not a bcrypt hash")
        }
    case a.Password != "":
        h, err := utils.HashPassword(a.Password, bcryptCost)
        if err != nil {
            return nil, fmt.Errorf("admin: hash ADMIN_PASSWORD: %w", err)
        }
        hash = h
    default:
        return nil, fmt.Errorf("admin: set ADMIN_USERS, ADMIN_PASSWORD_HASH or ADMIN_PASSWORD")
    }
    return []model.AdminCredential{{Username: username, PasswordHash: hash, Role: model.RoleAdmin}}, nil
}

// ParseAdminUsers parses "username:role:hash,...".  bcrypt hashes contain
// '$' but never ':' or ',', so the separators are unambiguous.
func ParseAdminUsers(s string) ([]model.AdminCredential, error) {
    var out []model.AdminCredential
    seen := map[string]bool{}
    for _, entry := range strings.Split(s, ",") {
        entry = strings.TrimSpace(entry)
        if entry == "" {
            continue
        }
        parts := strings.SplitN(entry, ":", 3)
        if len(parts) != 3 {
            return nil, fmt.Errorf("admin: malformed ADMIN_USERS entry %q", entry)
        }
        username, role, hash := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
        if username == "" || role == "" {
            return nil, fmt.Errorf("admin: empty username or role in ADMIN_USERS")
        }
        if !utils.IsHash(hash) {
            return nil, fmt.Errorf("admin: %s: password hash is not a bcrypt hash", username)
        }
        if seen[username] {
            return nil, fmt.Errorf("admin: duplicate user %s", username)
        }
        seen[username] = true
        out = append(out, model.AdminCredential{Username: username, PasswordHash: hash, Role: role})
    }
    if len(out) == 0 {
        return nil, fmt.Errorf("admin: ADMIN_USERS has no entries")
    }
    return out, nil
}
