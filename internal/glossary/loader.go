package glossary

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/fsutil"
	"github.com/vk/picklerun/internal/svo"
)

// hclVocabFile represents the top-level structure of a vocabulary file for
// decoding.
type hclVocabFile struct {
	Subjects   []*hclSubject   `hcl:"subject,block"`
	VerbSets   []*hclVerbSet   `hcl:"verbs,block"`
	Interfaces []*hclInterface `hcl:"interface,block"`
}

type hclSubject struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
}

type hclVerbSet struct {
	InterfaceType string     `hcl:"interface_type,label"`
	Verbs         []*hclVerb `hcl:"verb,block"`
}

type hclVerb struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
}

type hclInterface struct {
	Name       string          `hcl:"name,label"`
	Type       string          `hcl:"type"`
	Adapter    string          `hcl:"adapter"`
	Persistent bool            `hcl:"persistent,optional"`
	Config     *hclConfigBlock `hcl:"config,block"`
}

// hclConfigBlock carries free-form adapter settings; the attributes are
// converted to plain Go values rather than decoded into a fixed schema.
type hclConfigBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// yamlVocabFile mirrors the YAML vocabulary document. YAML files carry
// subjects and verb sets only; interface configuration stays in HCL.
type yamlVocabFile struct {
	Subjects map[string]*yamlEntry            `yaml:"subjects"`
	Verbs    map[string]map[string]*yamlEntry `yaml:"verbs"`
}

type yamlEntry struct {
	Description string `yaml:"description"`
}

// LoadPath finds and parses every vocabulary file under path (a file or a
// directory; .hcl, .yaml and .yml are recognized) and returns the merged
// glossary and interface set. Later files overlay earlier ones.
func LoadPath(ctx context.Context, path string) (*Glossary, Interfaces, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading vocabulary from path", "path", path)

	files, err := fsutil.FindFiles(path, ".hcl", ".yaml", ".yml")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find vocabulary files in %s: %w", path, err)
	}

	g := New()
	ifaces := make(Interfaces)
	if len(files) == 0 {
		logger.Warn("No vocabulary files found in path", "path", path)
		return g, ifaces, nil
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		if strings.HasSuffix(file, ".hcl") {
			if err := loadHCLFile(parser, file, g, ifaces); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err := loadYAMLFile(file, g); err != nil {
			return nil, nil, err
		}
	}

	return g, ifaces, nil
}

func loadHCLFile(parser *hclparse.Parser, filePath string, g *Glossary, ifaces Interfaces) error {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse vocabulary file %s: %w", filePath, diags)
	}

	var parsed hclVocabFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode vocabulary file %s: %w", filePath, diags)
	}

	overlay := New()
	for _, s := range parsed.Subjects {
		overlay.Subjects[svo.Normalize(s.Name)] = SubjectInfo{Description: s.Description}
	}
	for _, set := range parsed.VerbSets {
		verbs := make(map[svo.Keyword]VerbInfo, len(set.Verbs))
		for _, v := range set.Verbs {
			verbs[svo.Normalize(v.Name)] = VerbInfo{Description: v.Description}
		}
		overlay.Verbs[svo.Normalize(set.InterfaceType)] = verbs
	}
	g.Merge(overlay)

	for _, block := range parsed.Interfaces {
		cfg := InterfaceConfig{
			Type:       svo.Normalize(block.Type),
			Adapter:    block.Adapter,
			Persistent: block.Persistent,
		}
		if block.Config != nil {
			settings, err := decodeSettings(block.Config.Body)
			if err != nil {
				return fmt.Errorf("interface %q in %s: %w", block.Name, filePath, err)
			}
			cfg.Config = settings
		}
		ifaces[svo.Normalize(block.Name)] = cfg
	}

	return nil
}

func loadYAMLFile(filePath string, g *Glossary) error {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read vocabulary file %s: %w", filePath, err)
	}

	var parsed yamlVocabFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to decode vocabulary file %s: %w", filePath, err)
	}

	overlay := New()
	for name, entry := range parsed.Subjects {
		overlay.Subjects[svo.Normalize(name)] = SubjectInfo{Description: entry.description()}
	}
	for ifaceType, set := range parsed.Verbs {
		verbs := make(map[svo.Keyword]VerbInfo, len(set))
		for name, entry := range set {
			verbs[svo.Normalize(name)] = VerbInfo{Description: entry.description()}
		}
		overlay.Verbs[svo.Normalize(ifaceType)] = verbs
	}
	g.Merge(overlay)

	return nil
}

func (e *yamlEntry) description() string {
	if e == nil {
		return ""
	}
	return e.Description
}

// decodeSettings flattens a config block's attributes into plain Go values.
func decodeSettings(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read config block: %w", diags)
	}

	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate config attribute %q: %w", name, diags)
		}
		converted, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("config attribute %q: %w", name, err)
		}
		out[name] = converted
	}
	return out, nil
}

func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", val.Type().FriendlyName())
}
