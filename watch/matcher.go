// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"log/slog"
	"regexp"
)

// CompilePattern compiles a listener pattern as a case-insensitive
// regular expression. Patterns are stored exactly as the user typed
// them; the case-insensitivity flag is applied here rather than baked
// into the stored text.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// matches reports whether a channel name matches a listener pattern.
// A pattern that no longer compiles matches nothing; it is logged and
// skipped rather than failing the surrounding operation.
func matches(logger *slog.Logger, pattern, channelName string) bool {
	re, err := CompilePattern(pattern)
	if err != nil {
		logger.Warn("skipping uncompilable listener pattern",
			"pattern", pattern,
			"error", err)
		return false
	}
	return re.MatchString(channelName)
}
