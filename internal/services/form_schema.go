package services

import (
	"regexp"

	"gerador/internal/models"
)

var ruleFieldTypes = map[models.RuleKind][]models.FieldType{
	models.RuleMinValue:  {models.FieldNumber},
	models.RuleMaxValue:  {models.FieldNumber},
	models.RuleMinLength: {models.FieldText, models.FieldEmail, models.FieldTextarea, models.FieldMultiselect, models.FieldCheckbox},
	models.RuleMaxLength: {models.FieldText, models.FieldEmail, models.FieldTextarea, models.FieldMultiselect, models.FieldCheckbox},
	models.RulePattern:   {models.FieldText, models.FieldEmail, models.FieldTextarea, models.FieldDate},
}

// ValidateFormDefinition checks a list of field definitions before a form is
// stored. Fields are checked in order and the first problem is returned as a
// *ValidationError of kind ErrSchema.
func ValidateFormDefinition(fields []models.FormField) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.ID == "" {
			return fieldError(ErrSchema, "", "field %q has an empty id", field.Label)
		}
		if _, dup := seen[field.ID]; dup {
			return fieldError(ErrSchema, field.ID, "duplicate field id '%s'", field.ID)
		}
		seen[field.ID] = struct{}{}

		if !field.Type.IsValid() {
			return fieldError(ErrSchema, field.ID, "unknown field type '%s'", field.Type)
		}
		if field.Type.RequiresOptions() && len(field.Options) == 0 {
			return fieldError(ErrSchema, field.ID, "field '%s' of type %s requires options", field.ID, field.Type)
		}
		if err := checkOptions(field); err != nil {
			return err
		}
		for _, rule := range field.Validation {
			if err := checkRule(field, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkOptions(field models.FormField) error {
	values := make(map[string]struct{}, len(field.Options))
	for _, opt := range field.Options {
		if opt.Value == "" {
			return fieldError(ErrSchema, field.ID, "field '%s' has an option without a value", field.ID)
		}
		if _, dup := values[opt.Value]; dup {
			return fieldError(ErrSchema, field.ID, "field '%s' repeats option '%s'", field.ID, opt.Value)
		}
		values[opt.Value] = struct{}{}
	}
	return nil
}

func checkRule(field models.FormField, rule models.ValidationRule) error {
	if !rule.Rule.IsValid() {
		return fieldError(ErrSchema, field.ID, "unknown validation rule '%s'", rule.Rule)
	}
	if allowed, restricted := ruleFieldTypes[rule.Rule]; restricted && !containsType(allowed, field.Type) {
		return fieldError(ErrSchema, field.ID, "rule %s does not apply to %s fields", rule.Rule, field.Type)
	}

	switch rule.Rule {
	case models.RuleMinValue, models.RuleMaxValue:
		if rule.Value.Kind != models.KindNumber {
			return fieldError(ErrSchema, field.ID, "rule %s needs a numeric value", rule.Rule)
		}
	case models.RuleMinLength, models.RuleMaxLength:
		if rule.Value.Kind != models.KindNumber || rule.Value.Number < 0 {
			return fieldError(ErrSchema, field.ID, "rule %s needs a non-negative number", rule.Rule)
		}
	case models.RulePattern:
		if rule.Value.Kind != models.KindText {
			return fieldError(ErrSchema, field.ID, "rule pattern needs a string value")
		}
		if _, err := compilePattern(rule.Value.Text); err != nil {
			return fieldError(ErrSchema, field.ID, "invalid pattern: %v", err)
		}
	}
	return nil
}

func containsType(types []models.FieldType, t models.FieldType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// compilePattern anchors p so that it has to match the whole answer.
func compilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)$`)
}
