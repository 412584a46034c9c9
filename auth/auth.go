// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPIN   = errors.New("invalid organizer pin")
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptyPIN     = errors.New("organizer pin is empty")
	ErrPINTooLong   = errors.New("organizer pin is too long")
)

// DefaultPINCost matches the bcrypt cost the tasting service has always used.
const DefaultPINCost = 10

// MaxPINBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPINBytes = 72

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPIN derives a salted bcrypt hash of the organizer PIN.
// bcrypt is deliberately slow, so the work runs off the caller's goroutine
// and gives up when ctx is done.
func HashPIN(ctx context.Context, pin string, cost int) (string, error) {
	if pin == "" {
		return "", ErrEmptyPIN
	}
	if len(pin) > MaxPINBytes {
		return "", ErrPINTooLong
	}
	if cost == 0 {
		cost = DefaultPINCost
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		hash []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		h, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
		done <- result{h, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("failed to hash pin: %w", r.err)
		}
		return string(r.hash), nil
	}
}

// ComparePIN checks pin against a hash produced by HashPIN.
// Returns ErrInvalidPIN on mismatch.
func ComparePIN(ctx context.Context, hash, pin string) error {
	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return ErrInvalidPIN
		}
		return nil
	}
}
