package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Report reason validation
	validate.RegisterValidation("report_reason", func(fl validator.FieldLevel) bool {
		return oneOf(fl.Field().String(),
			"spam", "harassment", "hate_speech", "inappropriate_content",
			"misinformation", "copyright_violation", "scam",
			"violent_content", "explicit_content", "other")
	})

	// Queue priority band validation
	validate.RegisterValidation("priority_band", func(fl validator.FieldLevel) bool {
		return oneOf(fl.Field().String(), "low", "medium", "high", "urgent", "")
	})

	// Moderation action kind validation
	validate.RegisterValidation("action_kind", func(fl validator.FieldLevel) bool {
		return oneOf(fl.Field().String(),
			"content_remove", "content_hide",
			"user_warn", "user_suspend", "user_ban", "user_restore")
	})

	// Decision kind validation
	validate.RegisterValidation("decision_kind", func(fl validator.FieldLevel) bool {
		return oneOf(fl.Field().String(), "approve_action", "reject_report", "escalate")
	})

	// Report target type validation
	validate.RegisterValidation("target_type", func(fl validator.FieldLevel) bool {
		return oneOf(fl.Field().String(), "tool", "comment", "review", "user")
	})
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
		case "report_reason":
			errors[field] = "Unknown report reason"
		case "priority_band":
			errors[field] = "Priority must be: low, medium, high, or urgent"
		case "action_kind":
			errors[field] = "Unknown moderation action kind"
		case "decision_kind":
			errors[field] = "Decision must be: approve_action, reject_report, or escalate"
		case "target_type":
			errors[field] = "Target type must be: tool, comment, review, or user"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
