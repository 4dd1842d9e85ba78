// Package catalog holds the embedded seed data: system categories and the
// templates used to generate system objectives.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"finanzas/internal/core"
)

// Template sources decide how a system objective's target is computed.
const (
	SourceUserBudget     = "user_budget"
	SourceCategoryLimit  = "category_limit"
	SourcePreviousIncome = "previous_income"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type CategorySeed struct {
	Name string               `yaml:"name"`
	Kind core.TransactionKind `yaml:"kind"`
	Icon string               `yaml:"icon"`
}

type ObjectiveTemplate struct {
	Key     string             `yaml:"key"`
	Kind    core.ObjectiveKind `yaml:"kind"`
	Source  string             `yaml:"source"`
	Title   string             `yaml:"title"`
	Percent int                `yaml:"percent"`
	Points  int                `yaml:"points"`
}

type Catalog struct {
	Categories []CategorySeed      `yaml:"categories"`
	Objectives []ObjectiveTemplate `yaml:"objectives"`
}

// titleVerbFor is the single formatting verb each source fills into the
// title: the category name or the income percentage.
var titleVerbFor = map[string]string{
	SourceUserBudget:     "",
	SourceCategoryLimit:  "%s",
	SourcePreviousIncome: "%d",
}

// titleVerbs returns the formatting verbs of title, "%%" excluded.
func titleVerbs(title string) string {
	var b strings.Builder
	for i := 0; i < len(title); i++ {
		if title[i] != '%' {
			continue
		}
		if i+1 == len(title) {
			b.WriteByte('%')
			break
		}
		i++
		if title[i] != '%' {
			b.WriteByte('%')
			b.WriteByte(title[i])
		}
	}
	return b.String()
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultsYAML)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for i, cat := range c.Categories {
		if cat.Name == "" || !cat.Kind.Valid() {
			return fmt.Errorf("catalog category %d: name and valid kind required", i)
		}
		key := string(cat.Kind) + "/" + cat.Name
		if seen[key] {
			return fmt.Errorf("catalog category %q listed twice", cat.Name)
		}
		seen[key] = true
	}

	keys := make(map[string]bool)
	for _, t := range c.Objectives {
		if t.Key == "" || keys[t.Key] {
			return fmt.Errorf("catalog objective key %q empty or duplicated", t.Key)
		}
		keys[t.Key] = true
		if !t.Kind.Valid() {
			return fmt.Errorf("catalog objective %s: invalid kind %q", t.Key, t.Kind)
		}
		switch t.Source {
		case SourceUserBudget, SourceCategoryLimit:
		case SourcePreviousIncome:
			if t.Percent < 1 || t.Percent > 100 {
				return fmt.Errorf("catalog objective %s: percent must be 1..100", t.Key)
			}
		default:
			return fmt.Errorf("catalog objective %s: unknown source %q", t.Key, t.Source)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("catalog objective %s: title required", t.Key)
		}
		if got, want := titleVerbs(t.Title), titleVerbFor[t.Source]; got != want {
			return fmt.Errorf("catalog objective %s: title %q must contain exactly the verb %q", t.Key, t.Title, want)
		}
		if t.Points < 0 || t.Points > core.MaxObjectivePoints {
			return fmt.Errorf("catalog objective %s: points out of range", t.Key)
		}
	}
	return nil
}
