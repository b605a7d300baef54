// Package catalog holds the document type catalog, the per-service
// requirement lists and the ordered stage labels shown on the timeline.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

type DocumentType struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

type Service struct {
	Label             string   `yaml:"label" json:"label"`
	RequiredDocuments []string `yaml:"required_documents" json:"required_documents"`
}

type Catalog struct {
	DocumentTypes []DocumentType     `yaml:"document_types" json:"document_types"`
	Services      map[string]Service `yaml:"services" json:"services"`
	StageLabels   []string           `yaml:"stage_labels" json:"stage_labels"`
	index         map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Load reads a catalog file. An empty path falls back to Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.DocumentTypes) == 0 {
		return fmt.Errorf("catalog has no document types")
	}
	if len(c.StageLabels) == 0 {
		return fmt.Errorf("catalog has no stage labels")
	}
	c.index = make(map[string]int, len(c.DocumentTypes))
	for i, dt := range c.DocumentTypes {
		if dt.Key == "" {
			return fmt.Errorf("document type %d has empty key", i)
		}
		if _, dup := c.index[dt.Key]; dup {
			return fmt.Errorf("duplicate document type %q", dt.Key)
		}
		c.index[dt.Key] = i
	}
	for name, svc := range c.Services {
		for _, key := range svc.RequiredDocuments {
			if _, ok := c.index[key]; !ok {
				return fmt.Errorf("service %q requires unknown document type %q", name, key)
			}
		}
	}
	return nil
}

// Categories returns the document type keys in catalog order. This is the
// full required set used for stage resolution, independent of service type.
func (c *Catalog) Categories() []string {
	keys := make([]string, 0, len(c.DocumentTypes))
	for _, dt := range c.DocumentTypes {
		keys = append(keys, dt.Key)
	}
	return keys
}

func (c *Catalog) HasDocumentType(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Label is the display name of a document type, or the key itself when the
// type is unknown or unlabelled.
func (c *Catalog) Label(key string) string {
	if i, ok := c.index[key]; ok && c.DocumentTypes[i].Label != "" {
		return c.DocumentTypes[i].Label
	}
	return key
}

// RequiredFor returns the per-service requirement list, or false for an
// unknown service type.
func (c *Catalog) RequiredFor(serviceType string) ([]string, bool) {
	svc, ok := c.Services[serviceType]
	if !ok {
		return nil, false
	}
	return append([]string(nil), svc.RequiredDocuments...), true
}

func (c *Catalog) ServiceTypes() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
