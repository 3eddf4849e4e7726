// Package targets loads the ordered list of profile URLs for a run.
package targets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/lead-harvester/internal/schemas"
)

// entrySchema constrains a single target identifier.
const entrySchema = `{
	"type": "string",
	"minLength": 1,
	"pattern": "^https?://"
}`

var entries = schemas.MustCompile("target entry", entrySchema)

// Load reads the target file at path. A missing file yields an empty list and a warning.
// Entries failing validation are dropped with a warning; order is preserved.
func Load(path string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("targets file not found, nothing to process", zap.String("path", path))
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file %s: %w", path, err)
	}

	raw, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}

	items := make([]string, 0, len(raw))
	for i, entry := range raw {
		entry = strings.TrimSpace(entry)
		if err := entries.Validate(entry); err != nil {
			logger.Warn("dropping invalid target",
				zap.Int("index", i),
				zap.String("entry", entry),
				zap.Error(err))
			continue
		}
		items = append(items, entry)
	}
	return items, nil
}

// Parse decodes a list of identifiers. It accepts a JSON or YAML sequence, or a
// mapping whose keys are taken in document order (a set literal such as
// {"a", "b"} parses as a mapping with null values). Empty input yields an empty list.
func Parse(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode targets: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return []string{}, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		return scalars(root.Content, 1)
	case yaml.MappingNode:
		return scalars(root.Content, 2)
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return []string{}, nil
		}
	}
	return nil, fmt.Errorf("targets must be a list or a set of strings, got %s", describe(root))
}

// scalars collects every stride-th node starting at 0.
func scalars(nodes []*yaml.Node, stride int) ([]string, error) {
	out := make([]string, 0, len(nodes)/stride)
	for i := 0; i < len(nodes); i += stride {
		n := nodes[i]
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("target at line %d is a %s, expected a string", n.Line, describe(n))
		}
		out = append(out, n.Value)
	}
	return out, nil
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	}
	return "scalar " + strings.TrimPrefix(n.Tag, "!!")
}
