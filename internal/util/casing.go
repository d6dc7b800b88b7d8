package util

import (
	"strings"
	"unicode"
)

// commonInitialisms are rendered fully upper-case in Go identifiers
var commonInitialisms = map[string]bool{
	"ACL": true, "API": true, "ASCII": true, "CPU": true, "CSS": true, "DNS": true,
	"EOF": true, "GUID": true, "HTML": true, "HTTP": true, "HTTPS": true, "ID": true,
	"IP": true, "JSON": true, "LHS": true, "QPS": true, "RAM": true, "RHS": true,
	"RPC": true, "SLA": true, "SMTP": true, "SQL": true, "SSH": true, "TCP": true,
	"TLS": true, "TTL": true, "UDP": true, "UI": true, "UID": true, "UUID": true,
	"URI": true, "URL": true, "UTF8": true, "VM": true, "XML": true, "XMPP": true,
	"XSRF": true, "XSS": true,
}

// ToPascalCase converts snake_case, kebab-case or camelCase to PascalCase.
// Parts that are common initialisms are upper-cased ("user_id" -> "UserID").
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})

	var result strings.Builder
	for _, part := range parts {
		if upper := strings.ToUpper(part); commonInitialisms[upper] {
			result.WriteString(upper)
			continue
		}
		// Capitalize first letter, keep rest as-is
		result.WriteString(UpperFirst(part))
	}

	return result.String()
}

// ToCamelCase converts snake_case or kebab-case to camelCase
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return pascal
	}

	// A leading initialism is lowered as a whole ("ID" -> "id", "URLPath" -> "urlPath")
	for n := len(pascal); n > 1; n-- {
		if commonInitialisms[pascal[:n]] && (n == len(pascal) || unicode.IsUpper(rune(pascal[n]))) {
			return strings.ToLower(pascal[:n]) + pascal[n:]
		}
	}
	return LowerFirst(pascal)
}

// UpperFirst upper-cases the first rune of s
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// LowerFirst lower-cases the first rune of s
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// IsExported reports whether name starts with an upper-case letter
func IsExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
