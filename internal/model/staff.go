package model

import "time"

// StaffUser is a building-management staff account able to run the
// review, lottery and inventory endpoints.  Applicants themselves never
// log in; the submission form is public.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (currently only ADMIN).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type StaffUser struct {
    ID           uint64    // staff_users.id
    Email        string    // staff_users.email
    PasswordHash string    // staff_users.password_hash
    Role         string    // staff_users.role
    IsActive     bool      // staff_users.is_active
    CreatedAt    time.Time // staff_users.created_at
    UpdatedAt    time.Time // staff_users.updated_at
}

// StaffRefreshToken models an entry in the `staff_refresh_tokens`
// table.  Only the SHA-256 hash of the token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type StaffRefreshToken struct {
    ID        uint64     // staff_refresh_tokens.id
    UserID    uint64     // staff_refresh_tokens.user_id
    TokenHash string     // staff_refresh_tokens.token_hash
    ExpiresAt time.Time  // staff_refresh_tokens.expires_at
    RevokedAt *time.Time // staff_refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // staff_refresh_tokens.created_at
}
