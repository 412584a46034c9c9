// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tasting implements the operations of a blind tasting on top of a
Repository.

# Service

	svc := tasting.NewService(repo, issuer, tasting.Options{})

Every operation runs under a bounded timeout (Options.Timeout). A timeout
is reported as ErrUnavailable so callers can retry instead of assuming the
write happened.

# Caller Roles

ResolveCallerRole turns what a request presents into a models.Role once
per request:

  - organizer: the bearer token verifies for this tasting
  - participant: a participant name is given
  - anonymous: anything else, including a token for another tasting

Reads take the resolved role and filter dram identities through the
visibility package. Organizer operations take the raw credential and
return ErrInvalidCredential when it does not verify.

# Lifecycle

Created tastings are neither released nor completed. Released may be
toggled any number of times. Completion is one-way; afterwards ratings and
setup are frozen (ErrFrozen) while the released flag can still change.

# Errors

  - ErrNotFound: unknown tasting id or join code
  - ErrInvalidCredential: wrong PIN or missing/invalid organizer token
  - ErrFrozen: mutation of a completed tasting
  - ErrValidation: malformed input; the concrete error is *ValidationError
  - ErrUnavailable: a dependency timed out
*/
package tasting
