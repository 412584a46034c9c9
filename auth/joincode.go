// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// JoinCodeAlphabet leaves out 0/O and 1/I so codes survive being read aloud.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

var ErrEmptyAlphabet = errors.New("join code alphabet is empty")

// JoinCodes generates short human-typeable codes.
type JoinCodes struct {
	Alphabet string
	Length   int
}

// DefaultJoinCodes returns the production alphabet and length.
func DefaultJoinCodes() JoinCodes {
	return JoinCodes{Alphabet: JoinCodeAlphabet, Length: JoinCodeLength}
}

// Generate draws one code uniformly from the alphabet.
func (j JoinCodes) Generate() (string, error) {
	if j.Alphabet == "" {
		return "", ErrEmptyAlphabet
	}
	length := j.Length
	if length <= 0 {
		length = JoinCodeLength
	}

	max := big.NewInt(int64(len(j.Alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		out[i] = j.Alphabet[n.Int64()]
	}
	return string(out), nil
}

// ExistsFunc reports whether a join code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Unique draws codes until one is not taken. Collisions are retried rather
// than reported; the loop ends only when ctx is done or exists fails.
func (j JoinCodes) Unique(ctx context.Context, exists ExistsFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := j.Generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check join code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
}
