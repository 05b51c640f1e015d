// Package cli provides the interactive devfeed terminal client.
//
// The REPL has two command sets chosen by the session gate: the welcome set
// (login, biometric unlock, register) while signed out, and the app shell
// (feed, posting, likes, files, settings) while signed in. A background
// connectivity watcher keeps the prompt's online/offline marker current.
//
// Key features:
//   - Login form pre-filled from the remembered credentials
//   - Fingerprint-style unlock that replays the remembered login
//   - Feed with likes, confirmed deletion and swipe-to-delete
//   - Image attachment with upload progress
//   - Uploaded files inbox and preference toggles
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
