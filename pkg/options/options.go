// Package options holds the configuration read by every merge tag component.
//
// Components keep a pointer to a single Options value and read its fields on
// every call, so reconfiguring at runtime (a new prefix, a new display mode)
// is picked up by the next operation without rebuilding anything.
package options

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// DisplayMode selects the text shown inside a chip.
type DisplayMode string

const (
	// DisplayValue shows the raw tag value.
	DisplayValue DisplayMode = "value"
	// DisplayTitle shows the tag title, falling back to the value.
	DisplayTitle DisplayMode = "title"
)

// Options is the full merge tag configuration.
type Options struct {
	Prefix  string `koanf:"prefix" yaml:"prefix"`
	Suffix  string `koanf:"suffix" yaml:"suffix"`
	Trigger string `koanf:"trigger" yaml:"trigger"`

	TokenClass  string `koanf:"token_class" yaml:"token_class"`
	BraceClass  string `koanf:"brace_class" yaml:"brace_class"`
	ActiveClass string `koanf:"active_class" yaml:"active_class"`

	Display           DisplayMode `koanf:"display" yaml:"display"`
	ShowBraces        bool        `koanf:"show_braces" yaml:"show_braces"`
	HighlightOnInsert bool        `koanf:"highlight_on_insert" yaml:"highlight_on_insert"`
	KeepUnknown       bool        `koanf:"keep_unknown" yaml:"keep_unknown"`

	MaxSuggestions int `koanf:"max_suggestions" yaml:"max_suggestions"`
	HistoryLimit   int `koanf:"history_limit" yaml:"history_limit"`

	// Tags is the raw, unvalidated tag group list. It is normalized by the catalog.
	Tags []any `koanf:"tags" yaml:"tags"`
}

// Default returns the stock configuration.
func Default() *Options {
	return &Options{
		Prefix:            "{{",
		Suffix:            "}}",
		Trigger:           "{{",
		TokenClass:        "mce-mergetag",
		BraceClass:        "mce-mergetag-affix",
		ActiveClass:       "mt-active",
		Display:           DisplayValue,
		ShowBraces:        true,
		HighlightOnInsert: true,
		KeepUnknown:       true,
		MaxSuggestions:    100,
		HistoryLimit:      100,
		Tags:              []any{},
	}
}

// Clone returns a shallow copy; the raw tag list is shared.
func (o *Options) Clone() *Options {
	c := *o
	return &c
}

// ShowsValue reports whether chips display the raw value instead of the title.
func (o *Options) ShowsValue() bool {
	return o.Display == DisplayValue
}

// EffectiveTrigger is the autocomplete trigger, defaulting to the prefix.
func (o *Options) EffectiveTrigger() string {
	if o.Trigger != "" {
		return o.Trigger
	}
	if o.Prefix != "" {
		return o.Prefix
	}
	return "{{"
}

// FieldError is a validation error for a single config field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate reports every invalid field at once.
func (o *Options) Validate() error {
	var result *multierror.Error

	required := []struct {
		field string
		value string
	}{
		{"prefix", o.Prefix},
		{"suffix", o.Suffix},
		{"token_class", o.TokenClass},
		{"brace_class", o.BraceClass},
		{"active_class", o.ActiveClass},
	}
	for _, r := range required {
		if r.value == "" {
			result = multierror.Append(result, &FieldError{Field: r.field, Message: "must not be empty"})
		}
	}

	for _, c := range []struct {
		field string
		value string
	}{
		{"token_class", o.TokenClass},
		{"brace_class", o.BraceClass},
		{"active_class", o.ActiveClass},
	} {
		if strings.ContainsAny(c.value, " \t\r\n\f") {
			result = multierror.Append(result, &FieldError{Field: c.field, Message: "must be a single css class"})
		}
	}

	if o.TokenClass != "" && o.TokenClass == o.BraceClass {
		result = multierror.Append(result, &FieldError{Field: "brace_class", Message: "must differ from token_class"})
	}

	if o.MaxSuggestions < 0 {
		result = multierror.Append(result, &FieldError{Field: "max_suggestions", Message: "must not be negative"})
	}
	if o.HistoryLimit < 0 {
		result = multierror.Append(result, &FieldError{Field: "history_limit", Message: "must not be negative"})
	}

	return result.ErrorOrNil()
}
