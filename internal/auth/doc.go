// Package auth issues and verifies API tokens.
//
// Tokens are HS256 JWTs carrying a subject and one of two roles:
//
//   - viewer reads the device, its nodes and the live event stream
//   - operator additionally sends set commands, provisions nodes and
//     raises or clears alerts
//
// Permissions are a static role mapping; no database lookup happens per
// request. Tokens are minted offline with `homecontrol token <subject> <role>`
// using the configured secret.
package auth
