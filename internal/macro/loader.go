package macro

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/fsutil"
	"github.com/vk/picklerun/internal/loc"
)

// hclMacroFile represents the top-level structure of a macro registry file
// for decoding.
type hclMacroFile struct {
	Macros []*hclMacro `hcl:"macro,block"`
}

type hclMacro struct {
	Name        string          `hcl:"name,label"`
	Pattern     string          `hcl:"pattern"`
	Description string          `hcl:"description,optional"`
	Steps       []*hclMacroStep `hcl:"step,block"`
}

type hclMacroStep struct {
	Text string `hcl:"text,label"`
}

// LoadPaths parses every macro registry file under the given paths (files
// or directories) into one registry. Any parse, decode, or definition error
// aborts the load: a broken registry must not half-apply.
func LoadPaths(ctx context.Context, paths []string) (*Registry, error) {
	logger := ctxlog.FromContext(ctx)
	reg := NewRegistry()

	parser := hclparse.NewParser()
	for _, path := range paths {
		files, err := fsutil.FindFiles(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find macro registry files in %s: %w", path, err)
		}
		if len(files) == 0 {
			logger.Warn("No macro registry files found in path", "path", path)
			continue
		}

		for _, file := range files {
			if err := loadFile(parser, file, reg); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Macro registries loaded.", "macros", reg.Len())
	return reg, nil
}

func loadFile(parser *hclparse.Parser, filePath string, reg *Registry) error {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse macro registry %s: %w", filePath, diags)
	}

	var parsed hclMacroFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode macro registry %s: %w", filePath, diags)
	}

	for _, m := range parsed.Macros {
		steps := make([]string, 0, len(m.Steps))
		for _, s := range m.Steps {
			steps = append(steps, s.Text)
		}
		location := loc.Location{URI: filePath}
		if err := reg.Add(m.Name, m.Pattern, m.Description, steps, location); err != nil {
			return err
		}
	}
	return nil
}
