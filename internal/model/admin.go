package model

// AdminCredential is one entry of the fixed administrator table loaded at
// process start.  PasswordHash is a bcrypt hash and is never serialized.
type AdminCredential struct {
    Username     string `json:"username"`
    PasswordHash string `json:"-"`
    Role         string `json:"role"`
}

// RoleAdmin is the role granted to dashboard administrators.
const RoleAdmin = "admin"
