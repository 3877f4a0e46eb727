package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"/",    // Path separator
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// crateNameRegex matches valid crates.io package names.
var crateNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCrateName validates a crate name as accepted by cargo.
func ValidateCrateName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !crateNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid crate name: %q", name)
	}

	return nil
}

// ValidatePackageSpec validates a `name[:version]` package selector as
// accepted by --package.
func ValidatePackageSpec(spec string) error {
	name, version, hasVersion := strings.Cut(spec, ":")
	if err := ValidateCrateName(name); err != nil {
		return err
	}
	if hasVersion && version == "" {
		return New(ErrCodeInvalidInput, "package spec %q has an empty version", spec)
	}
	return nil
}

// ValidateNameList validates a comma-separated list of workspace member
// names as accepted by --include and --exclude.
func ValidateNameList(list string) error {
	for _, name := range strings.Split(list, ",") {
		if err := ValidateCrateName(strings.TrimSpace(name)); err != nil {
			return err
		}
	}
	return nil
}
