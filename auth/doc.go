// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides organizer credentials and code generation.

# Organizer PINs

PINs are hashed with bcrypt and never stored in clear:

	hash, err := auth.HashPIN(ctx, pin, auth.DefaultPINCost)
	err = auth.ComparePIN(ctx, hash, attempt) // ErrInvalidPIN on mismatch

Both calls stop waiting when ctx is done, so callers can bound them with a
timeout.

# Organizer Tokens

Issuer signs HS256 JWTs carrying role "orga" and the tasting ID (tid):

	issuer, err := auth.NewIssuer(secret, 12*time.Hour, nil)
	token, err := issuer.Issue(tastingID)
	ok := issuer.Verify(token, tastingID)

A token only verifies against the tasting it was issued for. Expired,
malformed or foreign tokens make Verify return false; Parse reports why.
Tokens are not revoked when the PIN changes; they lapse at expiry.

# Join Codes

Join codes are 6 characters from an alphabet without 0/O and 1/I:

	code, err := auth.DefaultJoinCodes().Unique(ctx, repo.JoinCodeExists)

Unique keeps drawing until it finds a code the store does not know.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
