package utils

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"golang-market-digest/pkg/logger"
)

// GoSafe runs fn in a new goroutine and recovers from panics so a single
// misbehaving task cannot crash the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still alive, logging when it
// is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// CleanToValidUTF8 drops invalid UTF-8 sequences from s.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// SafeText trims whitespace and removes NUL bytes that upset downstream
// encoders.
func SafeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(CleanToValidUTF8(s))
}

// ContainsString reports whether list contains s.
func ContainsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
