package model

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/minuet-ml/minuet/internal/engine"
)

// Model kind constants.
const (
	KindHMM     = "hmm"
	KindMixture = "mixture"
)

// File is the on-disk YAML model description the CLI loads.
// Exactly one parameter block must be present and it must match Kind.
type File struct {
	// Name identifies the model in stored runs and command output.
	Name string `yaml:"name"`

	// Kind selects the parameter block: "hmm" or "mixture".
	Kind string `yaml:"kind"`

	HMM     *HMM     `yaml:"hmm,omitempty"`
	Mixture *Mixture `yaml:"mixture,omitempty"`
}

// Load reads and parses a model file. Unknown YAML fields are rejected so
// typos fail loudly instead of silently defaulting.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model file: %w", err)
	}
	return &f, nil
}

// Validate checks the file structure and the selected model's parameters.
func (f *File) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch f.Kind {
	case KindHMM:
		if f.HMM == nil {
			return fmt.Errorf("kind is %q but the hmm block is missing", f.Kind)
		}
		if f.Mixture != nil {
			return fmt.Errorf("kind is %q but a mixture block is present", f.Kind)
		}
		return f.HMM.Validate()
	case KindMixture:
		if f.Mixture == nil {
			return fmt.Errorf("kind is %q but the mixture block is missing", f.Kind)
		}
		if f.HMM != nil {
			return fmt.Errorf("kind is %q but an hmm block is present", f.Kind)
		}
		return f.Mixture.Validate()
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
}

// Build compiles the selected model into a generative procedure.
func (f *File) Build() (engine.Model, error) {
	switch f.Kind {
	case KindHMM:
		return f.HMM.Model(), nil
	case KindMixture:
		return f.Mixture.Model(), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", f.Kind)
	}
}
