package jvm

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Arguments returns the java arguments that start mainClass. Every entry
// goes on the classpath; modules, when present, also form the module path.
func Arguments(classpath, modules []string, mainClass, separator string) []string {
	args := append([]string(nil), tuningFlags...)
	args = append(args, "-classpath", strings.Join(classpath, separator))
	if len(modules) > 0 {
		args = append(args, "--module-path", strings.Join(modules, separator))
	}
	return append(args, mainClass)
}

// ArgFile renders args in the java @argfile syntax with one argument per
// line. newline is "\n" or "\r\n".
func ArgFile(args []string, newline string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(quoteArg(a))
		b.WriteString(newline)
	}
	return b.String()
}

// quoteArg double quotes a when the argfile parser would otherwise split
// or reinterpret it
func quoteArg(a string) string {
	if a != "" && !strings.ContainsAny(a, " \t\r\n\f\"'\\#") {
		return a
	}

	var b strings.Builder
	b.Grow(len(a) + 2)
	b.WriteByte('"')
	for _, r := range a {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// encodeLatin1 encodes s as ISO-8859-1, which is how the Windows java
// launcher decodes argument files. Runes outside Latin-1 are an error.
func encodeLatin1(s string) ([]byte, error) {
	return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
}
