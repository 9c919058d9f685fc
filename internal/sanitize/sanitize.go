// Package sanitize filters inbound tool arguments and masks secrets in
// outbound text. Inbound filtering rejects rather than strips: a caller
// whose input is mangled silently would act on corrupted intent.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrRejected is returned for any argument containing disallowed
// characters. Error messages name the argument, never its value.
var ErrRejected = errors.New("contains disallowed characters")

// Redacted replaces secret values in outbound text.
const Redacted = "********"

var (
	nameRe     = regexp.MustCompile(`^[A-Za-z0-9_\-./:=, ]*$`)
	filenameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

	secretLineRe = regexp.MustCompile(`(?im)^(\s*"?[\w.-]*(?:password|secret|token|key)[\w.-]*"?\s*[:=]\s*)(\S[^\r\n]*?)(\s*)$`)
	secretPairRe = regexp.MustCompile(`(?i)([\w.-]*(?:password|secret|token|key)[\w.-]*=)(\S+)`)
)

// CheckName validates a short argument such as a path, host name, group
// name, or engine argument fragment. The allow-list covers the k=v and
// comma-separated forms the engine arguments use; shell metacharacters
// never pass.
func CheckName(arg, value string) error {
	if !nameRe.MatchString(value) {
		return fmt.Errorf("argument %q %w", arg, ErrRejected)
	}
	return nil
}

// CheckFilename validates a bare file name: no separators, no leading
// dot, only the portable character set.
func CheckFilename(arg, value string) error {
	if value == "" {
		return nil
	}
	if !filenameRe.MatchString(value) {
		return fmt.Errorf("argument %q %w", arg, ErrRejected)
	}
	return nil
}

// CheckBody validates free-form file content. Bodies are written to
// files and only ever reach the engine as a single argv element, so the
// filter is wider than CheckName: any printable text plus ordinary
// whitespace passes, control bytes and backquotes do not.
func CheckBody(arg, value string) error {
	for _, r := range value {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < 0x20 || r == 0x7f || r == '`' {
			return fmt.Errorf("argument %q %w", arg, ErrRejected)
		}
	}
	return nil
}

// Mask replaces the value of any secret-looking key/value pair in text
// with the redaction marker. Both "key: value" lines (YAML, INI) and
// inline "key=value" tokens (inventory host lines, engine output) are
// covered. Masking already-masked text is a no-op.
func Mask(text string) string {
	masked := secretLineRe.ReplaceAllString(text, "${1}"+Redacted+"${3}")
	masked = secretPairRe.ReplaceAllString(masked, "${1}"+Redacted)
	return masked
}
