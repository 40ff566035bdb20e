package codegen

import (
	"fmt"
	"strings"
)

// Language is a target language built into protoc
type Language string

const (
	LanguageCPP         Language = "cpp"
	LanguageCSharp      Language = "csharp"
	LanguageKotlin      Language = "kotlin"
	LanguageJava        Language = "java"
	LanguageObjC        Language = "objc"
	LanguagePHP         Language = "php"
	LanguagePythonStubs Language = "pyi"
	LanguagePython      Language = "python"
	LanguageRuby        Language = "ruby"
	LanguageRust        Language = "rust"
)

// Languages lists every supported language in the order their output
// flags are emitted
var Languages = []Language{
	LanguageCPP,
	LanguageCSharp,
	LanguageKotlin,
	LanguageJava,
	LanguageObjC,
	LanguagePHP,
	LanguagePythonStubs,
	LanguagePython,
	LanguageRuby,
	LanguageRust,
}

var languageNames = map[Language]string{
	LanguageCPP:         "C++",
	LanguageCSharp:      "C#",
	LanguageKotlin:      "Kotlin",
	LanguageJava:        "Java",
	LanguageObjC:        "Objective-C",
	LanguagePHP:         "PHP",
	LanguagePythonStubs: "Python stubs",
	LanguagePython:      "Python",
	LanguageRuby:        "Ruby",
	LanguageRust:        "Rust",
}

// ParseLanguage looks up a language by its protoc identifier, case-insensitively
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := languageNames[l]; !ok {
		return "", fmt.Errorf("%w: %s", ErrLanguageNotSupported, s)
	}
	return l, nil
}

// Name returns the human readable language name
func (l Language) Name() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return string(l)
}

// OutFlag returns the protoc flag that enables output for this language
func (l Language) OutFlag() string {
	return "--" + string(l) + "_out"
}

// LanguageSet is the set of enabled target languages
type LanguageSet map[Language]bool

// NewLanguageSet builds a set from the given languages
func NewLanguageSet(langs ...Language) LanguageSet {
	s := make(LanguageSet, len(langs))
	for _, l := range langs {
		s[l] = true
	}
	return s
}

// Enabled reports whether output for l is requested
func (s LanguageSet) Enabled(l Language) bool {
	return s[l]
}

// Ordered returns the enabled languages in emission order
func (s LanguageSet) Ordered() []Language {
	out := make([]Language, 0, len(s))
	for _, l := range Languages {
		if s[l] {
			out = append(out, l)
		}
	}
	return out
}
