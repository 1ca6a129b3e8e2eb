package services

import (
	"time"

	"github.com/go-playground/validator/v10"

	"gerador/internal/models"
)

var validate = validator.New()

// ValidateAnswers checks a submission against the form's field definitions.
// It stops at the first failure and never mutates its arguments, so repeated
// calls with the same input return the same result.
func ValidateAnswers(form *models.Form, answers models.Answers) error {
	fields := make(map[string]models.FormField, len(form.Fields))
	for _, f := range form.Fields {
		fields[f.ID] = f
	}

	for _, f := range form.Fields {
		if !f.Required {
			continue
		}
		if v, ok := answers[f.ID]; !ok || v.IsNull() {
			return fieldError(ErrMissingRequiredField, f.ID, "Field '%s' is required", f.Label)
		}
	}

	keys := answers.Keys()
	for _, id := range keys {
		if _, ok := fields[id]; !ok {
			return fieldError(ErrUnknownField, id, "Unknown field '%s'", id)
		}
	}

	for _, id := range keys {
		field, value := fields[id], answers[id]
		if !value.IsNull() {
			if err := checkType(field, value); err != nil {
				return err
			}
		}
		for _, rule := range field.Validation {
			if err := applyRule(field, rule, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkType applies the coercion rules of the field's type to a non-null value.
func checkType(field models.FormField, value models.FieldValue) error {
	switch field.Type {
	case models.FieldNumber:
		if value.Kind != models.KindNumber {
			return fieldError(ErrTypeMismatch, field.ID, "Field '%s' must be a number", field.Label)
		}
	case models.FieldMultiselect:
		if value.Kind != models.KindList {
			return fieldError(ErrTypeMismatch, field.ID, "Field '%s' must be a list", field.Label)
		}
		return checkChoices(field, value.List...)
	case models.FieldCheckbox:
		if value.Kind == models.KindBoolean {
			return nil
		}
		if value.Kind == models.KindList && len(field.Options) > 0 {
			return checkChoices(field, value.List...)
		}
		return fieldError(ErrTypeMismatch, field.ID, "Field '%s' must be a boolean", field.Label)
	default:
		if value.Kind != models.KindText {
			return fieldError(ErrTypeMismatch, field.ID, "Field '%s' must be a string", field.Label)
		}
		return checkText(field, value.Text)
	}
	return nil
}

func checkText(field models.FormField, s string) error {
	switch field.Type {
	case models.FieldEmail:
		if s != "" && validate.Var(s, "email") != nil {
			return fieldError(ErrTypeMismatch, field.ID, "Field '%s' must be a valid email address", field.Label)
		}
	case models.FieldDate:
		if s != "" && !isDate(s) {
			return fieldError(ErrTypeMismatch, field.ID, "Field '%s' must be a date", field.Label)
		}
	case models.FieldSelect, models.FieldRadio:
		if s != "" {
			return checkChoices(field, s)
		}
	}
	return nil
}

func checkChoices(field models.FormField, chosen ...string) error {
	for _, c := range chosen {
		if !field.HasOption(c) {
			return fieldError(ErrInvalidOption, field.ID, "'%s' is not an option of field '%s'", c, field.Label)
		}
	}
	return nil
}

func isDate(s string) bool {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func applyRule(field models.FormField, rule models.ValidationRule, value models.FieldValue) error {
	if rule.Rule == models.RuleRequired {
		if value.IsEmpty() {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' is required", field.Label)
		}
		return nil
	}
	if value.IsNull() {
		return nil
	}

	switch rule.Rule {
	case models.RuleMinLength, models.RuleMaxLength:
		n, ok := value.Length()
		if !ok {
			return ruleError(ErrTypeMismatch, field, rule, "Field '%s' has no length", field.Label)
		}
		// Bounds may be fractional or beyond the int range.
		length, bound := float64(n), rule.Value.Number
		if rule.Rule == models.RuleMinLength && length < bound {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' must have at least %v characters", field.Label, bound)
		}
		if rule.Rule == models.RuleMaxLength && length > bound {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' must have at most %v characters", field.Label, bound)
		}
	case models.RuleMinValue, models.RuleMaxValue:
		if value.Kind != models.KindNumber {
			return ruleError(ErrTypeMismatch, field, rule, "Field '%s' must be a number", field.Label)
		}
		bound := rule.Value.Number
		if rule.Rule == models.RuleMinValue && value.Number < bound {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' must be at least %v", field.Label, bound)
		}
		if rule.Rule == models.RuleMaxValue && value.Number > bound {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' must be at most %v", field.Label, bound)
		}
	case models.RulePattern:
		if value.Kind != models.KindText {
			return ruleError(ErrTypeMismatch, field, rule, "Field '%s' must be a string", field.Label)
		}
		re, err := compilePattern(rule.Value.Text)
		if err != nil {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' has an invalid pattern", field.Label)
		}
		if !re.MatchString(value.Text) {
			return ruleError(ErrRuleViolation, field, rule, "Field '%s' has an invalid format", field.Label)
		}
	}
	return nil
}
