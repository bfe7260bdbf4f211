package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a supported source language for parsing.
type Language int

const (
	// LanguageTypeScript represents TypeScript (.ts, .tsx files)
	LanguageTypeScript Language = iota
	// LanguageJavaScript represents JavaScript (.js, .jsx files)
	LanguageJavaScript
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the source language from a file path.
//
// Exactly four file kinds are recognized: .ts, .tsx, .js and .jsx.
// Returns LanguageUnknown for everything else.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile checks if a file path represents a TSX file.
// TSX files use the TypeScript grammar with JSX support enabled.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsTypeScriptFile reports whether the file kind carries type annotations.
// Used when injecting the synthetic props parameter: TypeScript kinds get an
// annotated parameter, JavaScript kinds a bare identifier.
func IsTypeScriptFile(filePath string) bool {
	return DetectLanguage(filePath) == LanguageTypeScript
}

// SupportedExtensions returns the recognized extensions in resolution probe order.
func SupportedExtensions() []string {
	return []string{".tsx", ".ts", ".jsx", ".js"}
}
