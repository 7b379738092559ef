package core

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Events []Event `yaml:"events"`
}

// ReadSeedEvents decodes a YAML document with a top-level "events" list and
// validates it the same way a responder schedule is validated.
func ReadSeedEvents(r io.Reader) ([]Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed events: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed events: %w", err)
	}

	if err := ValidateSchedule(seed.Events); err != nil {
		return nil, err
	}

	if seed.Events == nil {
		seed.Events = []Event{}
	}

	return seed.Events, nil
}

func LoadSeedEvents(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed events: %w", err)
	}
	defer file.Close()

	return ReadSeedEvents(file)
}
