// Package session implements login, registration, token refresh and logout
// against the /auth endpoints.
//
// The Manager holds no session state of its own: "authenticated" means an
// access token is present in the storage.TokenStore. Login and Register
// report failure as values (bool, RegisterResult) so callers can render
// them inline. Refresh clears the stored pair on any failure, forcing a
// new login.
package session
