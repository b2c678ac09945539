package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		registerCustom(validate)

		// Set custom validators on Gin's default binding validator too
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("schedule_type", validateScheduleType)
	_ = v.RegisterValidation("frequency", validateFrequency)
	_ = v.RegisterValidation("unit_code", validateUnitCode)
	_ = v.RegisterValidation("weekday", validateWeekday)

	// Use JSON tag names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// Custom validators

var unitCodeRegex = regexp.MustCompile(`^[a-zA-Zµ%]{1,10}$`)

func validateScheduleType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "one_time", "recurring", "template":
		return true
	}
	return false
}

func validateFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "daily", "weekly", "monthly":
		return true
	}
	return false
}

func validateUnitCode(fl validator.FieldLevel) bool {
	return unitCodeRegex.MatchString(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 0 && day <= 6
}
