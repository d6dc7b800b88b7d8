package synth

import (
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// memberTemplates renders one member each. Output is gofmt'd afterwards, so
// templates only need to be syntactically right.
const memberTemplates = `
{{- define "doc" -}}
{{- range splitList "\n" (trim .) }}
//{{ if . }} {{ . }}{{ end }}
{{- end }}
{{- end -}}

{{- define "type" -}}
{{- if .Doc }}{{ template "doc" .Doc }}{{ else }}
// {{ .Type }} is a record.
{{- end }}
type {{ .Type }} struct {
{{- range .Fields }}
{{- if .Doc }}{{ template "doc" .Doc }}{{ end }}
	{{ .GoName }} {{ .Type }}{{ if .Tag }} ` + "`{{ .Tag }}`" + `{{ end }}
{{- end }}
}
{{- end -}}

{{- define "constructor" }}
// {{ .Member.Name }} returns a new {{ .Type }}{{ if .Fields }} holding the given {{ fieldList .Fields }}{{ end }}.
func {{ .Member.Name }}({{ range $i, $f := .Fields }}{{ if $i }}, {{ end }}{{ $f.Param }} {{ $f.Type }}{{ end }}) *{{ .Type }} {
{{- if or .Fields .Defaults }}
	return &{{ .Type }}{
{{- range .Fields }}
		{{ .GoName }}: {{ .Param }},
{{- end }}
{{- range .Defaults }}
		{{ .GoName }}: {{ .DefaultExpr }},
{{- end }}
	}
{{- else }}
	return &{{ .Type }}{}
{{- end }}
}
{{- end -}}

{{- define "getter" }}
// {{ .Member.Name }} returns the {{ .Field.Name }} field.
func ({{ .Recv }} *{{ .Type }}) {{ .Member.Name }}() {{ .Field.Type }} {
{{- if .Field.Zero }}
	if {{ .Recv }} == nil {
		return {{ .Field.Zero }}
	}
	return {{ .Recv }}.{{ .Field.GoName }}
{{- else }}
	if {{ .Recv }} == nil {
		var zero {{ .Field.Type }}
		return zero
	}
	return {{ .Recv }}.{{ .Field.GoName }}
{{- end }}
}
{{- end -}}

{{- define "setter" }}
// {{ .Member.Name }} sets the {{ .Field.Name }} field.
func ({{ .Recv }} *{{ .Type }}) {{ .Member.Name }}({{ .Field.Param }} {{ .Field.Type }}) {
	{{ .Recv }}.{{ .Field.GoName }} = {{ .Field.Param }}
}
{{- end -}}

{{- define "equal" }}
// Equal reports whether {{ .Recv }} and other hold equal values{{ if .Fields }} in {{ fieldList .Fields }}{{ end }}.
// Two nil records are equal.
func ({{ .Recv }} *{{ .Type }}) Equal(other *{{ .Type }}) bool {
	if {{ .Recv }} == other {
		return true
	}
	if {{ .Recv }} == nil || other == nil {
		return false
	}
{{- range .Fields }}
	if {{ .Differs }} {
		return false
	}
{{- end }}
	return true
}
{{- end -}}

{{- define "hash" }}
// Hash returns a hash code consistent with Equal.
func ({{ .Recv }} *{{ .Type }}) Hash() uint64 {
	if {{ .Recv }} == nil {
		return recordkit.HashNull
	}
	h := recordkit.HashSeed
{{- range .Fields }}
	h = recordkit.Combine(h, {{ .Hash }})
{{- end }}
	return h
}
{{- end -}}

{{- define "string" }}
// String renders the record as {{ .Type }}({{ range $i, $f := .Fields }}{{ if $i }}, {{ end }}{{ $f.Name }}=...{{ end }}).
func ({{ .Recv }} *{{ .Type }}) String() string {
	if {{ .Recv }} == nil {
		return recordkit.NilString
	}
	return recordkit.StringForm({{ quote .Type }},
{{- range .Fields }}
		recordkit.F({{ quote .Name }}, {{ .Format }}),
{{- end }}
	)
}
{{- end -}}

{{- define "builder-type" }}
// {{ .Member.Name }} builds {{ .Type }} values field by field.
type {{ .Member.Name }} struct {
	rec {{ .Type }}
}
{{- end -}}

{{- define "builder-constructor" }}
// {{ .Member.Name }} returns a builder{{ if .Defaults }} holding the declared defaults{{ end }}.
func {{ .Member.Name }}() *{{ .Builder }} {
{{- if .Defaults }}
	b := &{{ .Builder }}{}
{{- range .Defaults }}
	b.rec.{{ .GoName }} = {{ .DefaultExpr }}
{{- end }}
	return b
{{- else }}
	return &{{ .Builder }}{}
{{- end }}
}
{{- end -}}

{{- define "builder-setter" }}
// {{ .Member.Name }} sets the {{ .Field.Name }} field of the record being built.
func (b *{{ .Builder }}) {{ .Member.Name }}({{ .Field.Param }} {{ .Field.Type }}) *{{ .Builder }} {
	b.rec.{{ .Field.GoName }} = {{ .Field.Param }}
	return b
}
{{- end -}}

{{- define "build" }}
// Build returns a new {{ .Type }} holding the values set on b.
func (b *{{ .Builder }}) Build() *{{ .Type }} {
	rec := b.rec
	return &rec
}
{{- end -}}
`

var templates = template.Must(template.New("members").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"fieldList": fieldList}).
	Parse(memberTemplates))

// fieldList renders "a", "a and b" or "a, b and c"
func fieldList(fields []fieldView) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0].Name
	}
	out := ""
	for i, f := range fields {
		switch {
		case i == 0:
		case i == len(fields)-1:
			out += " and "
		default:
			out += ", "
		}
		out += f.Name
	}
	return out
}
