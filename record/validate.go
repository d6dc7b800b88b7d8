package record

import (
	"fmt"
	"go/token"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/teranos/recordgen/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func descriptorValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report yaml keys rather than Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
			return token.IsIdentifier(fl.Field().String())
		})
	})
	return validate
}

// validateFile checks the structural rules of a decoded descriptor file and
// converts violations into ConfigurationErrors.
func validateFile(f *File) error {
	err := descriptorValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewConfigurationError(f.Source, "", "", "%v", err)
	}
	fe := verrs[0]
	rec, field := locate(f, fe.Namespace())
	return NewConfigurationError(f.Source, rec, field, "%s", describeViolation(fe))
}

// locate maps a validator namespace such as File.records[0].fields[2].type
// back to record and field names.
func locate(f *File, ns string) (rec, field string) {
	ri, fi := -1, -1
	for _, part := range strings.Split(ns, ".") {
		name, idx := splitIndex(part)
		switch name {
		case "records":
			ri = idx
		case "fields":
			fi = idx
		}
	}
	if ri < 0 || ri >= len(f.Records) {
		return "", ""
	}
	r := f.Records[ri]
	rec = r.Name
	if rec == "" {
		rec = "#" + strconv.Itoa(ri)
	}
	if fi >= 0 && fi < len(r.Fields) {
		field = r.Fields[fi].Name
		if field == "" {
			field = "#" + strconv.Itoa(fi)
		}
	}
	return rec, field
}

func splitIndex(part string) (string, int) {
	open := strings.IndexByte(part, '[')
	if open < 0 || !strings.HasSuffix(part, "]") {
		return part, -1
	}
	n := 0
	for _, r := range part[open+1 : len(part)-1] {
		if r < '0' || r > '9' {
			return part[:open], -1
		}
		n = n*10 + int(r-'0')
	}
	return part[:open], n
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "type" {
			return "field has no type"
		}
		return fe.Field() + " is required"
	case "goident":
		return fmt.Sprintf("%s %q is not a Go identifier", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of %s", fe.Field(), fe.Value(), fe.Param())
	default:
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
}
