// Package storage persists the session token pair on the client.
//
// The TokenStore is the only owner of the access/refresh tokens. Backends:
//
//   - MemoryStore: process-local, for tests and one-shot use
//   - FileStore: a single JSON document, optionally sealed with a passphrase,
//     replaced atomically on every write; a watcher drops the read cache
//     when another process changes the file
//   - BadgerStore: an embedded Badger database with transactional writes
//
// Expiry is never stored. The client discovers it when the API answers 401.
package storage
