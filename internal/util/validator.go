package util

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	nisPattern   = regexp.MustCompile(`^[0-9]{4,20}$`)
	nik16Pattern = regexp.MustCompile(`^[0-9]{16}$`)
)

func IsValidNIS(s string) bool   { return nisPattern.MatchString(s) }
func IsValidNIK(s string) bool   { return nik16Pattern.MatchString(s) }
func IsValidNUPTK(s string) bool { return nik16Pattern.MatchString(s) }

// RegisterValidators adds the nis, nik and nuptk tags to gin's validator.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("nis", func(fl validator.FieldLevel) bool {
		return IsValidNIS(fl.Field().String())
	})
	v.RegisterValidation("nik", func(fl validator.FieldLevel) bool {
		return IsValidNIK(fl.Field().String())
	})
	v.RegisterValidation("nuptk", func(fl validator.FieldLevel) bool {
		return IsValidNUPTK(fl.Field().String())
	})
}
