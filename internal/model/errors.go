package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected before it reaches a store.
	ErrValidation = errors.New("validation failed")
	// ErrCredentialInUse is returned when a federated identity already belongs to another user.
	ErrCredentialInUse = errors.New("credential already in use by another account")
	// ErrInvalidState is returned when a redirect round trip cannot be matched to a pending sign-in.
	ErrInvalidState = errors.New("sign-in state is missing, expired or already used")
	// ErrProviderNotConfigured is returned when federated sign-in is requested without a provider.
	ErrProviderNotConfigured = errors.New("federated provider is not configured")

	ErrSessionRevoked = errors.New("session revoked")
	ErrSessionExpired = errors.New("session expired")
)

// AuthError wraps failures of sign-in, link and sign-out operations.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// StoreError wraps failures of note store operations.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
