// SPDX-License-Identifier: MPL-2.0

// Package issue holds user-facing error plumbing for the CLI: ActionableError
// carries the failed operation, the resource involved and remediation hints,
// and the issue catalog holds Markdown troubleshooting guides rendered with
// glamour.
package issue
