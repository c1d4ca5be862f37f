package token

import "errors"

var (
	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken indicates the token is malformed, tampered with, or
	// fails an issuer, audience, or kind check
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("token expired")

	// ErrUnknownKind indicates an unsupported token kind was requested
	ErrUnknownKind = errors.New("unknown token kind")
)
