// Package yamlutil decodes and encodes configuration files.
// It keeps the YAML library behind two functions so callers never import it.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input (256KB). Site configs are a few lines.
const MaxInputSize = 256 << 10

var (
	ErrEmptyDocument  = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Decode parses data into v. Unknown keys are errors so that a misspelled
// option is reported instead of silently ignored.
func Decode(data []byte, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return ErrEmptyDocument
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}

	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %s", Describe(err))
	}
	return nil
}

// Encode renders v as YAML.
func Encode(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}

// Describe formats a decode error with its source position, without color.
func Describe(err error) string {
	return strings.TrimSpace(yaml.FormatError(err, false, false))
}
