// Package template synthesizes CloudFormation templates from declarative
// construct configuration. Constructs mirror the stacks the projects deploy:
// storage (DynamoDB and S3), compute (Lambda and API Gateway), network (VPC)
// and distribution (CloudFront).
package template

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Resource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty"`
}

type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
	Export      *Export `json:"Export,omitempty"`
}

type Export struct {
	Name any `json:"Name"`
}

type Template struct {
	AWSTemplateFormatVersion string              `json:"AWSTemplateFormatVersion"`
	Description              string              `json:"Description,omitempty"`
	Parameters               map[string]any      `json:"Parameters,omitempty"`
	Resources                map[string]Resource `json:"Resources"`
	Outputs                  map[string]Output   `json:"Outputs,omitempty"`
}

func New(description string) *Template {
	return &Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              description,
		Resources:                map[string]Resource{},
		Outputs:                  map[string]Output{},
	}
}

// AddResource registers a resource under its logical id. Duplicate ids are an
// error: two constructs naming the same resource is always a config mistake.
func (t *Template) AddResource(logicalID string, r Resource) error {
	if _, exists := t.Resources[logicalID]; exists {
		return fmt.Errorf("duplicate logical id %q", logicalID)
	}
	t.Resources[logicalID] = r
	return nil
}

func (t *Template) AddOutput(logicalID string, o Output) {
	t.Outputs[logicalID] = o
}

// ExportOutput adds an output exported as ${AWS::StackName}-suffix, the
// convention every construct follows.
func (t *Template) ExportOutput(logicalID, description string, value any, exportSuffix string) {
	t.AddOutput(logicalID, Output{
		Description: description,
		Value:       value,
		Export:      &Export{Name: StackExport(exportSuffix)},
	})
}

func (t *Template) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// YAML renders the template through its JSON form so the intrinsic marshal
// types apply, then converts.
func (t *Template) YAML() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LogicalID turns a hyphenated config name into the CamelCase id used in the
// template, e.g. "media-items" -> "MediaItems".
func LogicalID(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range strings.Split(name, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
