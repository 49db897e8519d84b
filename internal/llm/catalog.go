package llm

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Level is a proficiency level offered to the learner.
type Level struct {
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
}

// Topic is a conversation theme offered to the learner.
type Topic struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog lists the levels and topics, in display order.
type Catalog struct {
	DefaultLevel string  `yaml:"default_level"`
	DefaultTopic string  `yaml:"default_topic"`
	Levels       []Level `yaml:"levels"`
	Topics       []Topic `yaml:"topics"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("llm: embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the built-in one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Levels) == 0 || len(c.Topics) == 0 {
		return nil, errors.New("catalog needs at least one level and one topic")
	}
	if c.DefaultLevel == "" {
		c.DefaultLevel = c.Levels[0].Name
	}
	if c.DefaultTopic == "" {
		c.DefaultTopic = c.Topics[0].Name
	}
	if _, ok := c.level(c.DefaultLevel); !ok {
		return nil, fmt.Errorf("default level %q is not listed", c.DefaultLevel)
	}
	if _, ok := c.topic(c.DefaultTopic); !ok {
		return nil, fmt.Errorf("default topic %q is not listed", c.DefaultTopic)
	}
	return &c, nil
}

// LevelInstruction returns the tutor instruction for name, falling back to
// the default level.
func (c *Catalog) LevelInstruction(name string) string {
	if l, ok := c.level(name); ok {
		return l.Instruction
	}
	l, _ := c.level(c.DefaultLevel)
	return l.Instruction
}

// TopicDescription returns the description for name, falling back to the
// default topic.
func (c *Catalog) TopicDescription(name string) string {
	if t, ok := c.topic(name); ok {
		return t.Description
	}
	t, _ := c.topic(c.DefaultTopic)
	return t.Description
}

func (c *Catalog) level(name string) (Level, bool) {
	for _, l := range c.Levels {
		if l.Name == name {
			return l, true
		}
	}
	return Level{}, false
}

func (c *Catalog) topic(name string) (Topic, bool) {
	for _, t := range c.Topics {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}
