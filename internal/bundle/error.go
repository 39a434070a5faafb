package bundle

import "errors"

var (
	// ErrArchiveCorrupt is an unrecoverable error that occurs when the bundle
	// or one of its entries cannot be decoded. The bundle is unusable.
	ErrArchiveCorrupt = errors.New("bundle is corrupt or unreadable")

	// ErrFilesystem is an unrecoverable error that occurs when an ephemeral
	// file cannot be created, written, reopened or unlinked. It indicates a
	// broken local environment rather than a missing resource.
	ErrFilesystem = errors.New("ephemeral file could not be materialized")

	// ErrHashMismatch is an error that occurs when the verification of an
	// ephemeral copy does not match the digest of the decoded stream.
	ErrHashMismatch = errors.New("hash mismatch")
)
