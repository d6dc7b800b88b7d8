package record

import (
	"fmt"
	"strings"

	"github.com/teranos/recordgen/errors"
)

// ConfigurationError reports a malformed or conflicting record description.
// It is fatal for the generation pass.
type ConfigurationError struct {
	Source string // descriptor path, may be empty
	Record string // record name, may be empty
	Field  string // field name, may be empty
	Msg    string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	if e.Record != "" {
		fmt.Fprintf(&b, "record %s: ", e.Record)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "field %s: ", e.Field)
	}
	b.WriteString(e.Msg)
	return b.String()
}

// NewConfigurationError returns a ConfigurationError marked with
// errors.ErrConfiguration.
func NewConfigurationError(source, rec, field, format string, args ...interface{}) error {
	return errors.Mark(&ConfigurationError{
		Source: source,
		Record: rec,
		Field:  field,
		Msg:    fmt.Sprintf(format, args...),
	}, errors.ErrConfiguration)
}
