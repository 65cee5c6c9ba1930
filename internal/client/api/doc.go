// Package api is the authenticated task API client.
//
// Every call carries "Authorization: Bearer <access token>" when one is
// stored. On 401 the client runs the refresh protocol:
//
//   - if a refresh is in flight, the request queues and is replayed with
//     the token the refresh produced, or fails if the refresh failed;
//   - otherwise it starts the refresh itself, and when it resolves wakes
//     every queued request in arrival order.
//
// Each request is replayed for 401 at most once, so a token the server
// keeps rejecting cannot loop. A failed refresh clears the session and
// calls the OnSessionExpired hook. 429 responses are replayed once after
// the server's retry_after delay.
package api
