//go:build !mobile

// Package mobile is empty outside -tags mobile builds.
package mobile

// Dummy makes the package importable in regular builds.
func Dummy() {}
