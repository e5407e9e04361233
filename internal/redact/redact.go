// Package redact strips likely secrets from diff text before it leaves
// the machine.
package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret shapes.
var secretPatterns = compilePatterns(
	// Key/secret assignments with a long value
	`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`,
	`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`,
	`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`,
	// Vendor-specific token formats
	`AKIA[0-9A-Z]{16}`,
	`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`,
	`gh[pousr]_[A-Za-z0-9_]{36,}`,
	`xox[bporas]-[A-Za-z0-9-]{10,}`,
	`sk-ant-[A-Za-z0-9_-]{20,}`,
	`sk-[A-Za-z0-9]{20,}`,
	// Bearer tokens and JWTs
	`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`,
	`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`,
	// Private key blocks
	`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`,
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Secrets replaces detected secrets in text with a placeholder. Safe to
// run repeatedly.
func Secrets(text string) string {
	for _, pat := range secretPatterns {
		text = pat.ReplaceAllString(text, placeholder)
	}
	return text
}

// SensitivePath reports whether a file path matches any of the given
// glob patterns. Patterns of the form "**/name" also match the bare
// basename.
func SensitivePath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
		if trimmed := strings.TrimPrefix(pattern, "**/"); trimmed != pattern {
			if ok, err := filepath.Match(trimmed, filepath.Base(path)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
