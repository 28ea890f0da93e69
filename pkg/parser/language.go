package parser

import (
	"path/filepath"
	"strings"
)

// Language is a tree-sitter grammar family the transform can parse.
type Language int

const (
	// LanguageTypeScript covers .ts/.mts/.cts, and .tsx through IsTSXFile
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js/.jsx/.mjs/.cjs; the grammar always accepts JSX
	LanguageJavaScript
	// LanguageUnknown represents an unsupported file
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

// sourceExtensions lists every extension DetectLanguage accepts.
var sourceExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// DetectLanguage detects the grammar from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
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

// IsSourceFile reports whether the path has an extension the transform handles.
// Declaration files (.d.ts) are excluded: they never contain component values.
func IsSourceFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	if strings.HasSuffix(lower, ".d.ts") || strings.HasSuffix(lower, ".d.mts") || strings.HasSuffix(lower, ".d.cts") {
		return false
	}
	return DetectLanguage(filePath) != LanguageUnknown
}

// SourceExtensions returns the handled file extensions, dot included.
func SourceExtensions() []string {
	out := make([]string, len(sourceExtensions))
	copy(out, sourceExtensions)
	return out
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{
		LanguageTypeScript,
		LanguageJavaScript,
	}
}
