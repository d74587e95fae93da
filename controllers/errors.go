package controllers

// User-facing error messages. Enumeration-sensitive ones are shared
// across internal conditions on purpose: the login message never reveals
// whether the account exists, and the code/token messages never reveal
// whether the value was wrong, expired or consumed.
const (
	ErrMsgDuplicateAccount   = "user already exists"
	ErrMsgInvalidCredentials = "invalid email or password"
	ErrMsgUnverified         = "unverified"
	ErrMsgInvalidSession     = "invalid or expired session"
	ErrMsgInvalidCode        = "invalid or expired verification code"
	ErrMsgAlreadyVerified    = "email already verified"
	ErrMsgResendCooldown     = "please wait before requesting a new code"
	ErrMsgInvalidResetToken  = "invalid or expired reset token"
	ErrMsgInternal           = "internal server error"
	ErrMsgUnauthorized       = "unauthorized"
)
