// Package schema provides the implementations for handling (Unix-based)
// operating system syscalls used by all other packages. The wrappers exist so
// that the filesystem and descriptor handling can be replaced with mocks
// during testing.
package schema
