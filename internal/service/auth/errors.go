package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidRefreshToken indicates the refresh token is malformed, unknown
	// or carries a bad signature
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType indicates an access token was presented where a refresh
	// token was expected, or vice versa
	ErrWrongTokenType = errors.New("wrong token type")
)

// Signup, login and recovery flow errors
var (
	// ErrEmailTaken indicates a registered user already owns the email
	ErrEmailTaken = errors.New("email is already taken")

	// ErrUsernameTaken indicates a registered user already owns the username
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials indicates the email/password pair does not match
	// any user. Deliberately indistinguishable between unknown email and
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCodeMismatch indicates the submitted confirmation code does not match
	// the one issued for this session
	ErrCodeMismatch = errors.New("confirmation code does not match")

	// ErrSessionExpired indicates the signup or recovery session is gone,
	// either expired out of the cache or never created
	ErrSessionExpired = errors.New("session has expired")

	// ErrNotApproved indicates a recovery update was attempted before the
	// recovery session was approved with a valid code
	ErrNotApproved = errors.New("recovery has not been approved")
)
