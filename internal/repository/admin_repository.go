package repository

import (
    "context"
    "database/sql"
    "strings"
)

// AdminUser mirrors the 'admin_users' table.
type AdminUser struct {
    Username     string
    PasswordHash string
    Role         string
    IsActive     bool
}

// AdminRepo reads the administrator table.  It is consulted once at
// startup; there is no write path.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// ListActive returns every active administrator ordered by username.
func (r *AdminRepo) ListActive(ctx context.Context) ([]AdminUser, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT username,password_hash,role,is_active FROM admin_users WHERE is_active=1 ORDER BY username")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []AdminUser
    for rows.Next() {
        var u AdminUser
        if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Role, &u.IsActive); err != nil {
            return nil, err
        }
        u.Username = strings.TrimSpace(u.Username)
        out = append(out, u)
    }
    return out, rows.Err()
}
