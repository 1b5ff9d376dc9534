package domain

import "time"

// User is an employee account. Passwords are stored only as argon2id hashes.
//
// Active replaces the inverted isDelete flag of earlier iterations of this
// system: true means the account may authenticate, false means it has been
// deactivated by HR/admin. Deactivation is reversible; accounts are never
// hard-deleted.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2id PHC encoded
	Role         Role
	Active       bool

	// Password-recovery state. At most one outstanding code per user; a new
	// forgot-password request overwrites whatever was there before.
	OTPCode      *string    // 6 digit numeric string (nullable)
	OTPExpiresAt *time.Time // issuance + 10 minutes (nullable)

	// Reset ticket minted when the OTP is verified. The reset-password step
	// must present the matching token, binding it to a completed
	// verification.
	ResetTokenHash *string    // base64url SHA-256 fingerprint (nullable)
	ResetExpiresAt *time.Time // nullable

	CreatedAt time.Time
	UpdatedAt time.Time
}
