// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package store

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token inspection helpers. The remote store verifies tokens; locally we only
// peek at the claims so logs can carry the subject and an evidently expired
// token can be reported before a doomed network round trip.

// TokenSubject returns the sub claim of a cached JWT, or "" when the token
// is not a parseable JWT.
func TokenSubject(token string) string {
	claims := parseUnverified(token)
	if claims == nil {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// TokenExpired reports whether a cached JWT carries an exp claim in the past.
// Unparseable tokens and tokens without exp report false: only the remote
// store can reject those authoritatively.
func TokenExpired(token string) bool {
	claims := parseUnverified(token)
	if claims == nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// parseUnverified decodes JWT claims without signature verification.
func parseUnverified(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
