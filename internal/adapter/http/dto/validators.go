package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	// Nigerian MSISDN: +234 or 0 prefix, then a 7/8/9 series number.
	ngPhoneRe   = regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`)
	smartcardRe = regexp.MustCompile(`^\d{10,12}$`)
	meterRe     = regexp.MustCompile(`^\d{11,13}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("ng_phone", validateNgPhone)
		_ = v.RegisterValidation("smartcard", validateSmartcard)
		_ = v.RegisterValidation("meter_number", validateMeterNumber)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateNgPhone accepts Nigerian phone numbers in local or E.164 form.
func validateNgPhone(fl validator.FieldLevel) bool {
	return ngPhoneRe.MatchString(fl.Field().String())
}

// validateSmartcard accepts decoder smartcard/IUC numbers.
func validateSmartcard(fl validator.FieldLevel) bool {
	return smartcardRe.MatchString(fl.Field().String())
}

// validateMeterNumber accepts electricity meter numbers.
func validateMeterNumber(fl validator.FieldLevel) bool {
	return meterRe.MatchString(fl.Field().String())
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
