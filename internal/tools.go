//go:build tools
// +build tools

// Package tools pins the Go tools the build depends on.
package tools

import (
	_ "golang.org/x/lint/golint"
	_ "golang.org/x/tools/cmd/stringer"
)
