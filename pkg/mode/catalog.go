// Package mode holds the response modes and the command parser that selects them.
package mode

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"ampersand-agent/pkg/llm"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	Synoptic    = "synoptic"
	Dissection  = "dissection"
	Explanation = "explanation"
	Guidance    = "guidance"
	Research    = "research"
)

//go:embed modes.yaml
var defaultCatalogYAML []byte

var ErrUnknownMode = errors.New("unknown mode")

type Example struct {
	Role    string `yaml:"role" validate:"required,oneof=user assistant"`
	Content string `yaml:"content" validate:"required"`
}

// Mode is a response style with its instruction template and few-shot example.
type Mode struct {
	Name        string    `yaml:"name" validate:"required,oneof=synoptic dissection explanation guidance research"`
	Triggers    []string  `yaml:"triggers" validate:"required,min=1,dive,required"`
	Description string    `yaml:"description"`
	Prompt      string    `yaml:"prompt" validate:"required"`
	Examples    []Example `yaml:"examples" validate:"dive"`
}

// Title is the display name used in reply prefixes, e.g. "Synoptic".
func (m Mode) Title() string {
	if m.Name == "" {
		return ""
	}
	return strings.ToUpper(m.Name[:1]) + m.Name[1:]
}

// Label renders the reply prefix, e.g. "[**Synoptic Mode**]".
func (m Mode) Label() string {
	return fmt.Sprintf("[**%s Mode**]", m.Title())
}

// ExampleMessages returns the few-shot exchange as chat messages.
func (m Mode) ExampleMessages() []llm.Message {
	out := make([]llm.Message, len(m.Examples))
	for i, e := range m.Examples {
		out[i] = llm.Message{Role: e.Role, Content: e.Content}
	}
	return out
}

// SourceCount is how many web sources a search collects for this mode.
func (m Mode) SourceCount() int {
	if m.Name == Research {
		return 3
	}
	return 1
}

// ForcesSearch reports whether commands in this mode always search.
func (m Mode) ForcesSearch() bool {
	return m.Name != Synoptic
}

type catalogFile struct {
	Modes []Mode `yaml:"modes" validate:"required,min=1,dive"`
}

// Catalog is the immutable set of modes keyed by name and trigger.
type Catalog struct {
	modes     []Mode
	byName    map[string]Mode
	byTrigger map[string]string
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modes file: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse modes: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid modes: %w", err)
	}

	c := &Catalog{
		byName:    make(map[string]Mode, len(file.Modes)),
		byTrigger: make(map[string]string),
	}
	for _, m := range file.Modes {
		if _, dup := c.byName[m.Name]; dup {
			return nil, fmt.Errorf("invalid modes: %s defined twice", m.Name)
		}
		for i, trigger := range m.Triggers {
			trigger = strings.ToLower(strings.TrimSpace(trigger))
			if owner, dup := c.byTrigger[trigger]; dup {
				return nil, fmt.Errorf("invalid modes: trigger %q used by %s and %s", trigger, owner, m.Name)
			}
			c.byTrigger[trigger] = m.Name
			m.Triggers[i] = trigger
		}
		c.byName[m.Name] = m
		c.modes = append(c.modes, m)
	}
	return c, nil
}

// Lookup resolves a mode by name.
func (c *Catalog) Lookup(name string) (Mode, error) {
	m, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	return m, nil
}

// ByTrigger resolves a mode by one of its trigger words, case-insensitively.
func (c *Catalog) ByTrigger(trigger string) (Mode, bool) {
	name, ok := c.byTrigger[strings.ToLower(trigger)]
	if !ok {
		return Mode{}, false
	}
	return c.byName[name], true
}

// Modes lists the catalog in file order.
func (c *Catalog) Modes() []Mode {
	return append([]Mode(nil), c.modes...)
}

// Triggers lists every trigger word, sorted.
func (c *Catalog) Triggers() []string {
	out := make([]string, 0, len(c.byTrigger))
	for t := range c.byTrigger {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
