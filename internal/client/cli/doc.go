// Package cli provides the interactive ClassKeeper command-line client.
//
// It wires configuration, the local capture queue, the remote stores, and an
// interactive REPL that supports online/offline operation. Typical flow:
// paste an ID token to sign in, capture evidence during the lesson, and let
// the background drainer push queued captures once connectivity returns.
//
// Key features:
//   - Login / Logout via a pasted ID token
//   - Capture evidence (image or video) with activity, students, comment
//   - Student registry: add, list, rename, remove
//   - List / Export / Delete synced evidence
//   - Manual sync and sync status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and the connectivity watcher for details.
package cli
