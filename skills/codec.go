// Package skills reads and writes skill assets and keeps a reloadable library
// of decoded machines.
package skills

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	// builtin action kinds must be registered before any asset is decoded
	_ "github.com/milk9111/actskill/action"
	"github.com/milk9111/actskill/skill"
)

var ErrEmptyAsset = errors.New("skills: empty asset")

// DecodeError is returned for any asset that cannot be turned into a
// machine. Err is the underlying parser or registry error.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("skills: decode: %v", e.Err)
	}
	return fmt.Sprintf("skills: decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func Decode(data []byte) (*skill.MachineConfig, error) {
	return DecodeNamed("", data)
}

// DecodeNamed decodes an asset; source only labels errors.
func DecodeNamed(source string, data []byte) (*skill.MachineConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Source: source, Err: ErrEmptyAsset}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &DecodeError{Source: source, Err: ErrEmptyAsset}
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil, &DecodeError{Source: source, Err: ErrEmptyAsset}
	}

	m := skill.NewMachineConfig()
	if err := root.Decode(m); err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	return m, nil
}

// Encode writes m in the asset text form.
func Encode(m *skill.MachineConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("skills: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("skills: encode: %w", err)
	}
	return buf.Bytes(), nil
}
