// Package secretstore keeps the OAuth client secret outside the settings file.
//
// Three backends are available:
//   - File: a single-line file with 0600 permissions, replaced atomically on write
//   - Env: read-only access to an environment variable
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, Secret Service)
//
// The refresh token itself lives in the credential file managed by configstore; only the
// client secret is stored here.
package secretstore
