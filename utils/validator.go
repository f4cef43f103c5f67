package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Minimal struct validator. Supports on string fields (and string pointers,
// which are skipped when nil):
// - required
// - email
// - min=N (length in characters)
// - max=N
// - nameok (letters, numbers, space, hyphen, apostrophe, 1-100 chars)
// - oneof=a|b|c

var (
	reEmail  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reNameOK = regexp.MustCompile(`^[\p{L}0-9 \-'.]{1,100}$`)
)

// ValidationError names the offending field by its JSON key.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		name := jsonName(field)
		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				if strings.Contains(tag, "required") {
					return &ValidationError{Field: name, Message: name + " is required"}
				}
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() != reflect.String {
			continue
		}
		sval := fv.String()

		for _, p := range strings.Split(tag, ",") {
			p = strings.TrimSpace(p)
			switch {
			case p == "required":
				if strings.TrimSpace(sval) == "" {
					return &ValidationError{Field: name, Message: name + " is required"}
				}
			case p == "email":
				if sval != "" && !reEmail.MatchString(sval) {
					return &ValidationError{Field: name, Message: "Please include a valid email"}
				}
			case p == "nameok":
				if sval != "" && !reNameOK.MatchString(sval) {
					return &ValidationError{Field: name, Message: name + " contains invalid characters"}
				}
			case strings.HasPrefix(p, "min="):
				n, _ := strconv.Atoi(strings.TrimPrefix(p, "min="))
				if len([]rune(sval)) < n {
					return &ValidationError{Field: name, Message: name + " must be at least " + strconv.Itoa(n) + " characters long"}
				}
			case strings.HasPrefix(p, "max="):
				n, _ := strconv.Atoi(strings.TrimPrefix(p, "max="))
				if len([]rune(sval)) > n {
					return &ValidationError{Field: name, Message: name + " must be at most " + strconv.Itoa(n) + " characters long"}
				}
			case strings.HasPrefix(p, "oneof="):
				if sval == "" {
					continue
				}
				allowed := strings.Split(strings.TrimPrefix(p, "oneof="), "|")
				ok := false
				for _, a := range allowed {
					if sval == a {
						ok = true
						break
					}
				}
				if !ok {
					return &ValidationError{Field: name, Message: name + " must be one of " + strings.Join(allowed, ", ")}
				}
			}
		}
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if n := strings.Split(tag, ",")[0]; n != "" && n != "-" {
			return n
		}
	}
	return f.Name
}
