// Package util provides small shared helpers: human-readable size
// parsing for request limits and secret masking for log output.
package util
