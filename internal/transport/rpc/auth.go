package rpc

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication.
var exemptPaths = map[string]struct{}{
	"/healthz":  {},
	"/metrics":  {},
	"/manifest": {},
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens
// against hex-encoded SHA-256 digests. Keys never appear in config or memory
// in the clear. If digests is empty, authentication is disabled
// (pass-through). A non-empty digest that fails to decode keeps auth enabled:
// requests are rejected rather than silently let through on a config typo.
func BearerAuthMiddleware(digests []string) func(http.Handler) http.Handler {
	valid := make([][]byte, 0, len(digests))
	misconfigured := false
	for _, d := range digests {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		decoded, err := hex.DecodeString(d)
		if err != nil || len(decoded) != sha256.Size {
			misconfigured = true
			continue
		}
		valid = append(valid, decoded)
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled — pass everything through
		if len(valid) == 0 && !misconfigured {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeRPCError(w, http.StatusUnauthorized, nil, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeRPCError(w, http.StatusUnauthorized, nil, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			presented := sha256.Sum256([]byte(auth[len(bearerPrefix):]))
			if !digestMatches(presented[:], valid) {
				writeRPCError(w, http.StatusUnauthorized, nil, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// digestMatches compares the presented digest against every configured one,
// in constant time per candidate.
func digestMatches(presented []byte, valid [][]byte) bool {
	matched := false
	for _, v := range valid {
		if subtle.ConstantTimeCompare(presented, v) == 1 {
			matched = true
		}
	}
	return matched
}
