package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/secretsync/internal/errors"
)

// Format is a manifest encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "TOML"
	case FormatYAML:
		return "YAML"
	case FormatJSON:
		return "JSON"
	default:
		return "unknown"
	}
}

//go:embed schema.json
var schemaJSON []byte

// formatFor picks the format from the file extension. A file without an
// extension is read as TOML.
func formatFor(path string) (Format, error) {
	switch ext := filepath.Ext(path); ext {
	case "", ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, dserrors.ConfigError{
			Path:       path,
			Value:      ext,
			Message:    "unsupported manifest file extension",
			Suggestion: "Use a .toml, .yaml, .yml or .json manifest",
		}
	}
}

// rawManifest is the decoding target; File order is recovered separately.
type rawManifest struct {
	Backend  BackendConfig   `yaml:"backend" toml:"backend"`
	AWS      AWSConfig       `yaml:"aws" toml:"aws"`
	GCP      GCPConfig       `yaml:"gcp" toml:"gcp"`
	Keyring  KeyringConfig   `yaml:"keyring" toml:"keyring"`
	Akeyless AkeylessConfig  `yaml:"akeyless" toml:"akeyless"`
	Files    map[string]File `yaml:"files" toml:"files"`
}

// document is a manifest parsed far enough to validate it.
type document struct {
	// generic is the manifest as plain maps for schema validation.
	generic map[string]any
	// order holds the file names in declaration order.
	order  []string
	decode func(*rawManifest) error
}

// Parse validates and decodes a manifest, keeping the declaration order of
// its files.
func Parse(data []byte, format Format) (*Manifest, error) {
	var (
		doc *document
		err error
	)
	switch format {
	case FormatYAML, FormatJSON:
		doc, err = parseYAML(data, format)
	case FormatTOML:
		doc, err = parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported manifest format %d", format)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(doc.generic); err != nil {
		return nil, err
	}

	var raw rawManifest
	if err := doc.decode(&raw); err != nil {
		return nil, dserrors.ConfigError{
			Message: fmt.Sprintf("failed to decode %s manifest: %v", format, err),
			Err:     err,
		}
	}

	m := &Manifest{
		Backend:  raw.Backend,
		AWS:      raw.AWS,
		GCP:      raw.GCP,
		Keyring:  raw.Keyring,
		Akeyless: raw.Akeyless,
	}
	order := doc.order
	for _, name := range slices.Sorted(maps.Keys(raw.Files)) {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	for _, name := range order {
		f, ok := raw.Files[name]
		if !ok {
			continue
		}
		f.Name = name
		m.Files = append(m.Files, f)
	}
	m.applyDefaults()

	return m, nil
}

func parseYAML(data []byte, format Format) (*document, error) {
	if format == FormatJSON && !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, syntaxError(format, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, syntaxError(format, err)
	}

	empty := &document{
		generic: map[string]any{},
		decode:  func(*rawManifest) error { return nil },
	}
	if len(root.Content) == 0 {
		return empty, nil
	}

	node := resolveAlias(root.Content[0])
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return empty, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, dserrors.ConfigError{
			Message:    "manifest must be a mapping at the top level",
			Suggestion: "Declare backend settings and files as keys, e.g. 'files:'",
		}
	}

	generic := map[string]any{}
	if err := node.Decode(&generic); err != nil {
		return nil, syntaxError(format, err)
	}

	return &document{
		generic: generic,
		order:   mappingKeys(lookup(node, "files")),
		decode:  func(raw *rawManifest) error { return node.Decode(raw) },
	}, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolveAlias(mapping.Content[i+1])
		}
	}
	return nil
}

// mappingKeys lists the keys of a mapping in document order. Merge keys
// (<<) are expanded in place, and explicit keys win over merged ones.
func mappingKeys(mapping *yaml.Node) []string {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	var keys []string
	add := func(key string) {
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		if key.Kind == yaml.ScalarNode && (key.Tag == "!!merge" || key.Value == "<<" && key.Tag == "") {
			for _, k := range mergedKeys(resolveAlias(mapping.Content[i+1])) {
				add(k)
			}
			continue
		}
		add(key.Value)
	}
	return keys
}

func mergedKeys(value *yaml.Node) []string {
	if value == nil {
		return nil
	}
	if value.Kind == yaml.SequenceNode {
		var keys []string
		for _, item := range value.Content {
			keys = append(keys, mappingKeys(resolveAlias(item))...)
		}
		return keys
	}
	return mappingKeys(value)
}

func parseTOML(data []byte) (*document, error) {
	generic := map[string]any{}
	if err := toml.Unmarshal(data, &generic); err != nil {
		return nil, syntaxError(FormatTOML, err)
	}

	order, err := tomlFileOrder(data)
	if err != nil {
		return nil, syntaxError(FormatTOML, err)
	}

	return &document{
		generic: generic,
		order:   order,
		decode:  func(raw *rawManifest) error { return toml.Unmarshal(data, raw) },
	}, nil
}

// tomlFileOrder walks the TOML expressions and collects the names under the
// files table the first time each one appears. It understands [files.name]
// headers, dotted keys and inline tables.
func tomlFileOrder(data []byte) ([]string, error) {
	var (
		p     unstable.Parser
		table []string
		order []string
		seen  = map[string]bool{}
	)

	add := func(key []string) {
		if len(key) >= 2 && key[0] == "files" && !seen[key[1]] {
			seen[key[1]] = true
			order = append(order, key[1])
		}
	}

	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = keyParts(expr.Key())
			add(table)
		case unstable.KeyValue:
			key := slices.Concat(table, keyParts(expr.Key()))
			if len(key) == 1 && key[0] == "files" {
				if value := expr.Value(); value.Kind == unstable.InlineTable {
					children := value.Children()
					for children.Next() {
						add(slices.Concat(key, keyParts(children.Node().Key())))
					}
				}
			}
			add(key)
		}
	}

	return order, p.Error()
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func syntaxError(format Format, err error) error {
	var tomlErr *toml.DecodeError
	if errors.As(err, &tomlErr) {
		row, col := tomlErr.Position()
		return dserrors.ConfigError{
			Message:    fmt.Sprintf("invalid TOML syntax at line %d, column %d: %s", row, col, tomlErr.Error()),
			Suggestion: "Check for unquoted strings, missing brackets or duplicate keys",
			Err:        err,
		}
	}

	suggestion := "Check for indentation errors, missing quotes, or invalid characters"
	if format == FormatJSON {
		suggestion = "Check for trailing commas, missing quotes or unbalanced braces"
	}
	return dserrors.ConfigError{
		Message:    fmt.Sprintf("invalid %s syntax in manifest: %v", format, err),
		Suggestion: suggestion,
		Err:        err,
	}
}

func validate(doc map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	descs := result.Errors()
	messages := make([]string, 0, len(descs))
	for _, desc := range descs {
		messages = append(messages, desc.String())
	}

	// Values are left out: they may be credentials.
	field := descs[0].Field()
	if field == "(root)" {
		field = ""
	}
	return dserrors.ConfigError{
		Field:      field,
		Message:    "schema validation failed:\n  - " + strings.Join(messages, "\n  - "),
		Suggestion: schemaSuggestion(descs[0]),
	}
}

func schemaSuggestion(desc gojsonschema.ResultError) string {
	switch {
	case strings.HasPrefix(desc.Field(), "backend.provider"):
		return "Use one of: akeyless, aws, aws-ssm, gcp, keyring"
	case desc.Type() == "required" && strings.HasPrefix(desc.Field(), "files."):
		return "Every file needs a 'path' and a 'secret'"
	case desc.Type() == "additional_property_not_allowed":
		return "Remove the unknown key or check its spelling"
	}
	return ""
}
