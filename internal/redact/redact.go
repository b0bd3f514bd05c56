// Package redact strips credentials, connection strings, provider API keys,
// and other sensitive fragments from strings before they are logged or
// attached to error responses.
package redact

import "regexp"

// rules are applied in order. Specific shapes run before broad ones so a
// connection string is credential-redacted before the host pattern would
// otherwise claim it.
var rules = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	// Database connection strings with inline credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb|db|database|connection)://[^@]+@`), "[REDACTED_CREDENTIAL]"},

	// Labeled passwords and tokens.
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), "[REDACTED_CREDENTIAL]"},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), "[REDACTED_KEY]"},

	// Bare LLM provider key shapes. Users paste these into generation
	// requests, so they show up in places the labeled pattern never sees:
	// sk-... (OpenAI, Anthropic's sk-ant-...), xai-..., AIza... (Google).
	{regexp.MustCompile(`\b(?:sk|xai)-[A-Za-z0-9_-]{16,}\b`), "[REDACTED_KEY]"},
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{16,}\b`), "[REDACTED_KEY]"},

	// Three-part base64url JWTs.
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},

	// Filesystem paths.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), "[REDACTED_PATH]"},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), "[REDACTED_PATH]"},

	// Stack trace fragments.
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},

	// Email addresses.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), "[REDACTED_EMAIL]"},

	// SQL statements leaked through driver errors.
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|GRANT)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|DATABASE|SCHEMA|VIEW)(?:[\s\w,*()='"]+)?`), "[REDACTED_SQL]"},

	// Hostnames with optional ports.
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), "[REDACTED_HOST]"},
}

// String returns input with every rule applied.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's message. A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
