// Package validation provides input validation for values that end up in
// command invocations.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Dangerous characters that must never appear in values passed to commands.
var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r", " "}

// packageNamePattern matches Debian package names: lowercase alphanumerics,
// plus, minus and dots, at least two characters, starting alphanumeric.
var packageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)

// sessionNamePattern matches tmux session and window names.
var sessionNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidatePackageName validates a system package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if strings.ContainsRune(name, '\x00') {
		return fmt.Errorf("package name contains null byte")
	}
	for _, ch := range dangerousChars {
		if strings.Contains(name, ch) {
			return fmt.Errorf("package name contains invalid character: %q", ch)
		}
	}
	if !packageNamePattern.MatchString(name) {
		return fmt.Errorf("invalid package name format: %q", name)
	}
	return nil
}

// ValidateSessionName validates a multiplexer session or window name.
func ValidateSessionName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("session name too long (max 128 characters)")
	}
	if !sessionNamePattern.MatchString(name) {
		return fmt.Errorf("invalid session name format: %q", name)
	}
	return nil
}

// ValidateSecureURL validates that a URL is well formed and uses an
// encrypted, authenticated transport.
func ValidateSecureURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url cannot be empty")
	}
	if len(raw) > 2048 {
		return fmt.Errorf("url too long (max 2048 characters)")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("url scheme %q is not allowed: only https is accepted", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}

// ValidateInstallerArg validates a single argument passed to a fetched
// installer. Arguments come from the catalog, not from downloaded content,
// but they still must not smuggle shell metacharacters.
func ValidateInstallerArg(arg string) error {
	if strings.ContainsRune(arg, '\x00') {
		return fmt.Errorf("argument contains null byte")
	}
	for _, ch := range []string{";", "&", "|", "$", "`", "\n", "\r"} {
		if strings.Contains(arg, ch) {
			return fmt.Errorf("argument contains invalid character: %q", ch)
		}
	}
	return nil
}
