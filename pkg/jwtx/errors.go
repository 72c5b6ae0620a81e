package jwtx

import "errors"

var (
	// ErrExpired reports a token past its exp claim.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrNotYetValid reports a token used before its nbf claim.
	ErrNotYetValid = errors.New("jwtx: token not yet valid")

	// ErrInvalidToken reports a token that failed parsing or signature
	// verification.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrNoSecret reports a signer constructed without key material.
	ErrNoSecret = errors.New("jwtx: signing secret is empty")
)
