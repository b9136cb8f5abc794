// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/zipkit/zipkit/pkg/archive"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the style used to render issue guidance.
	// Values match glamour's standard style names.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It collects every field-level error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the user's archive defaults.
	Config struct {
		// BufferSize is the copy chunk size in bytes.
		BufferSize int `json:"buffer_size" mapstructure:"buffer_size"`
		// StorageMethod is "deflated" or "stored".
		StorageMethod archive.StorageMethod `json:"storage_method" mapstructure:"storage_method"`
		// CompressionLevel is the deflate level (-1..9).
		CompressionLevel int `json:"compression_level" mapstructure:"compression_level"`
		// Prefix is stripped from file entry names.
		Prefix string `json:"prefix" mapstructure:"prefix"`
		// PrefixMode is "first" or "leading".
		PrefixMode archive.PrefixMode `json:"prefix_mode" mapstructure:"prefix_mode"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the file the configuration was read from, empty for defaults.
		Source string `json:"-" mapstructure:"-"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and rendered issue guidance.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the guidance rendering style.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the built-in defaults. They match archive.DefaultOptions.
func DefaultConfig() *Config {
	d := archive.DefaultOptions()
	return &Config{
		BufferSize:       d.BufferSize,
		StorageMethod:    d.Method,
		CompressionLevel: d.CompressionLevel,
		Prefix:           d.Prefix,
		PrefixMode:       d.PrefixMode,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// ArchiveOptions converts the configuration into writer options.
func (c *Config) ArchiveOptions() []archive.Option {
	return []archive.Option{
		archive.WithBufferSize(c.BufferSize),
		archive.WithMethod(c.StorageMethod),
		archive.WithCompressionLevel(c.CompressionLevel),
		archive.WithPrefix(c.Prefix),
		archive.WithPrefixMode(c.PrefixMode),
	}
}

// Validate checks the fields that environment overrides can set to any value.
func (c *Config) Validate() error {
	var errs []error
	opts := archive.DefaultOptions()
	for _, opt := range c.ArchiveOptions() {
		opt(&opts)
	}
	if err := opts.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Validate returns an error unless c is auto, dark or light.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field errors", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
