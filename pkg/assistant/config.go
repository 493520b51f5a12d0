package assistant

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// VocabularyConfig is the on-disk vocabulary schema:
//
//	tools:
//	  - name: read_file
//	    params: [path]
//	  - name: write_to_file
//	    params: [path, content]
//	    opaque: [content]
//
// The thinking pseudo-tag is implicit and never declared.
type VocabularyConfig struct {
	Tools []ToolSpec `json:"tools" yaml:"tools"`
}

// ParseVocabularyYAML builds a Vocabulary from YAML bytes.
func ParseVocabularyYAML(data []byte) (*Vocabulary, error) {
	var cfg VocabularyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("assistant: parse vocabulary: %w", err)
	}
	return NewVocabulary(cfg.Tools)
}

// LoadVocabularyFile builds a Vocabulary from a YAML file.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assistant: read vocabulary: %w", err)
	}
	return ParseVocabularyYAML(data)
}
