// Package tlsroots builds the trust roots used for HTTPS calls to the
// task API: the system pool, optionally extended with a private CA bundle.
package tlsroots
