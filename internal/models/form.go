package models

import (
	"encoding/json"
	"time"
)

// FieldType is the kind of input a form field collects.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldEmail       FieldType = "email"
	FieldDate        FieldType = "date"
	FieldSelect      FieldType = "select"
	FieldMultiselect FieldType = "multiselect"
	FieldCheckbox    FieldType = "checkbox"
	FieldRadio       FieldType = "radio"
	FieldTextarea    FieldType = "textarea"
	FieldFile        FieldType = "file"
)

// IsValid reports whether t is one of the known field types.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldText, FieldNumber, FieldEmail, FieldDate, FieldSelect,
		FieldMultiselect, FieldCheckbox, FieldRadio, FieldTextarea, FieldFile:
		return true
	}
	return false
}

// RequiresOptions reports whether fields of this type must declare options.
func (t FieldType) RequiresOptions() bool {
	return t == FieldSelect || t == FieldMultiselect || t == FieldRadio
}

// RuleKind names a validation rule that can be attached to a field.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMinLength RuleKind = "min_length"
	RuleMaxLength RuleKind = "max_length"
	RuleMinValue  RuleKind = "min_value"
	RuleMaxValue  RuleKind = "max_value"
	RulePattern   RuleKind = "pattern"
)

// IsValid reports whether k is one of the known rule kinds.
func (k RuleKind) IsValid() bool {
	switch k {
	case RuleRequired, RuleMinLength, RuleMaxLength, RuleMinValue, RuleMaxValue, RulePattern:
		return true
	}
	return false
}

// ValidationRule is a single constraint on a field's answer.
type ValidationRule struct {
	Rule    RuleKind   `json:"rule"`
	Value   FieldValue `json:"value"`
	Message *string    `json:"message,omitempty"`
}

// FieldOption is one selectable choice of a select, multiselect, radio or checkbox field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormField is one input slot of a form definition.
type FormField struct {
	ID           string           `json:"id" validate:"required,max=100"`
	Type         FieldType        `json:"type" validate:"required"`
	Label        string           `json:"label" validate:"required,max=255"`
	Placeholder  *string          `json:"placeholder,omitempty"`
	HelpText     *string          `json:"help_text,omitempty"`
	Required     bool             `json:"required"`
	Validation   []ValidationRule `json:"validation,omitempty"`
	Options      []FieldOption    `json:"options,omitempty"`
	DefaultValue *FieldValue      `json:"default_value,omitempty"`
	Order        int              `json:"order"`
}

// HasOption reports whether value is one of the field's option values.
func (f FormField) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

const DefaultConfirmationMessage = "Obrigado por preencher o formulário!"

// FormSettings holds the global behaviour switches of a form.
type FormSettings struct {
	IsPublic            bool           `json:"is_public"`
	CollectEmail        bool           `json:"collect_email"`
	OneResponsePerUser  bool           `json:"one_response_per_user"`
	ShowProgressBar     bool           `json:"show_progress_bar"`
	ConfirmationMessage string         `json:"confirmation_message"`
	NotificationEmail   *string        `json:"notification_email,omitempty" validate:"omitempty,email"`
	CustomTheme         map[string]any `json:"custom_theme,omitempty"`
}

// DefaultFormSettings returns the settings a form gets when none are supplied.
func DefaultFormSettings() FormSettings {
	return FormSettings{
		OneResponsePerUser:  true,
		ShowProgressBar:     true,
		ConfirmationMessage: DefaultConfirmationMessage,
	}
}

// UnmarshalJSON fills keys missing from the payload with their defaults.
func (s *FormSettings) UnmarshalJSON(data []byte) error {
	type plain FormSettings
	decoded := plain(DefaultFormSettings())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = FormSettings(decoded)
	return nil
}

// Form is a persisted form definition.
type Form struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:varchar(1000)"`
	Fields      []FormField  `json:"fields" gorm:"serializer:json;not null"`
	Settings    FormSettings `json:"settings" gorm:"serializer:json;not null"`
	IsPublic    bool         `json:"-" gorm:"index"` // mirrors Settings.IsPublic for listing queries
	OwnerID     uint         `json:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	PublishedAt *time.Time   `json:"published_at"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
}

// FormCreate is the payload accepted when creating a form.
type FormCreate struct {
	Title       string        `json:"title" validate:"required,min=1,max=255"`
	Description string        `json:"description" validate:"max=1000"`
	Fields      []FormField   `json:"fields" validate:"required,dive"`
	Settings    *FormSettings `json:"settings"`
}

// FormUpdate is a partial update; nil members are left untouched.
type FormUpdate struct {
	Title       *string       `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	Fields      *[]FormField  `json:"fields" validate:"omitempty,dive"`
	Settings    *FormSettings `json:"settings"`
	IsActive    *bool         `json:"is_active"`
	PublishedAt *time.Time    `json:"published_at"`
	ExpiresAt   *time.Time    `json:"expires_at"`
}
