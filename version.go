// Package quill holds build metadata for the quill CLI.
package quill

// Version is the current quill release.
const Version = "0.1.0"
