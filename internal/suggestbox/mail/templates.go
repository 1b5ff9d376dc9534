package mail

import "fmt"

const signature = "\n\nRegards,\nSuggestBox Team"

// CredentialsEmail is sent when an account is created on someone's behalf.
// It carries the generated password, which the user should change on first
// login.
func CredentialsEmail(name, email, password string) (subject, body string) {
	subject = "Your Account Credentials"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour account has been created.\n\nLogin Details:\nEmail: %s\nPassword: %s\n\nPlease use this password to log in and change it upon first login.%s",
		name, email, password, signature,
	)
	return subject, body
}

// PasswordUpdatedEmail is sent when an administrator sets a new password on
// an existing account.
func PasswordUpdatedEmail(name, password string) (subject, body string) {
	subject = "Your Password Has Been Updated"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour password has been successfully updated.\n\nNew Password: %s\n\nPlease use this password for logging in.%s",
		name, password, signature,
	)
	return subject, body
}

// RecoveryCodeEmail carries the one-time password-reset code.
func RecoveryCodeEmail(name, code string) (subject, body string) {
	subject = "Password Reset OTP"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour OTP for password reset is: %s\n\nThis OTP is valid for 10 minutes.%s",
		name, code, signature,
	)
	return subject, body
}
