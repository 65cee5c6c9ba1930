// Package token provides helpers for handling bearer tokens without
// exposing them.
//
// Fingerprint is a short SHA-256 prefix that can be logged to tell tokens
// apart; it cannot be used to recover or replay the token. Equal compares
// tokens in constant time.
package token
