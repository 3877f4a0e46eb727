package tree

import (
	"strings"

	"github.com/matzehuels/debstatus/pkg/errors"
)

type chunkKind int

const (
	chunkRaw chunkKind = iota
	chunkPackage
	chunkLicense
	chunkRepository
)

type chunk struct {
	kind chunkKind
	text string
}

// Pattern is a parsed --format string. {p} expands to the package with its
// Debian status, {l} to its license and {r} to its repository. Braces are
// escaped by doubling them.
type Pattern []chunk

// ParsePattern parses a format string.
func ParsePattern(format string) (Pattern, error) {
	var (
		p   Pattern
		raw strings.Builder
	)
	flush := func() {
		if raw.Len() > 0 {
			p = append(p, chunk{kind: chunkRaw, text: raw.String()})
			raw.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		switch c := format[i]; c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				raw.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "expected '}' in format `%s`", format)
			}
			arg := strings.TrimSpace(format[i+1 : i+1+end])
			i += end + 1

			var kind chunkKind
			switch arg {
			case "p":
				kind = chunkPackage
			case "l":
				kind = chunkLicense
			case "r":
				kind = chunkRepository
			default:
				return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported pattern `%s`", arg)
			}
			flush()
			p = append(p, chunk{kind: kind})
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				raw.WriteByte('}')
				i++
				continue
			}
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unexpected '}' in format `%s`", format)
		default:
			raw.WriteByte(c)
		}
	}
	flush()
	return p, nil
}
