// Package errors derives low-cardinality error class tags for metrics.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/fieldline/dispatch/internal/errors"
)

// Classify returns a normalized error class for tagging metrics and logs.
// Errors carrying an application error code use it directly; anything else
// falls back to the innermost concrete type name, lowercased with the package
// qualifier flattened.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
