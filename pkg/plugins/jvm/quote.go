package jvm

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-shquot/shquot"
)

// quoter renders a command line for one launcher family. The two
// implementations are not interchangeable.
type quoter func(args []string) (string, error)

// QuotePOSIX quotes args as a single /bin/sh command line
func QuotePOSIX(args []string) (string, error) {
	return shquot.POSIXShell(args), nil
}

// QuoteBatch quotes args as a single line of a cmd.exe batch file. Every
// token is double quoted, embedded quotes are doubled and percent signs
// are escaped so no variable expansion happens. Line breaks and NUL have
// no quoted form and are rejected.
func QuoteBatch(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.ContainsAny(arg, "\r\n\x00") {
			return "", fmt.Errorf("%w: %q", ErrUnquotable, arg)
		}

		var b strings.Builder
		b.Grow(len(arg) + 2)
		b.WriteByte('"')
		for _, r := range arg {
			switch r {
			case '"':
				b.WriteString(`""`)
			case '%':
				b.WriteString("%%")
			default:
				b.WriteRune(r)
			}
		}
		b.WriteByte('"')
		quoted = append(quoted, b.String())
	}
	return strings.Join(quoted, " "), nil
}
