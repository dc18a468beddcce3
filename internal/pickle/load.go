package pickle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vk/picklerun/internal/fsutil"
	"github.com/vk/picklerun/internal/loc"
)

// Ext is the file suffix the loader recognizes for parsed suite documents.
const Ext = ".pickles.json"

// suiteDoc mirrors the JSON interchange emitted by the feature parser. The
// wire structs are decoded verbatim and then translated into the runtime
// model, keeping the model itself format-agnostic.
type suiteDoc struct {
	Pickles []pickleDoc `json:"pickles"`
}

type pickleDoc struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	URI   string    `json:"uri"`
	Steps []stepDoc `json:"steps"`
}

type stepDoc struct {
	Text      string        `json:"text"`
	Line      int           `json:"line"`
	Column    int           `json:"column"`
	DataTable [][]string    `json:"dataTable,omitempty"`
	DocString *docStringDoc `json:"docString,omitempty"`
}

type docStringDoc struct {
	MediaType string `json:"mediaType,omitempty"`
	Content   string `json:"content"`
}

// Load resolves path (a suite document or a directory of them) and returns
// the pickles of every document in lexical file order.
func Load(path string) ([]Pickle, error) {
	files, err := fsutil.FindFiles(path, Ext)
	if err != nil {
		return nil, fmt.Errorf("resolving suite path %q: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files under %q", Ext, path)
	}

	var pickles []Pickle
	for _, file := range files {
		loaded, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		pickles = append(pickles, loaded...)
	}
	return pickles, nil
}

// LoadFile reads a single suite document.
func LoadFile(path string) ([]Pickle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var doc suiteDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing suite file %q: %w", path, err)
	}

	pickles := make([]Pickle, 0, len(doc.Pickles))
	for i, p := range doc.Pickles {
		if p.ID == "" {
			return nil, fmt.Errorf("suite file %q: pickle %d has no id", path, i)
		}
		pickles = append(pickles, translatePickle(p))
	}
	return pickles, nil
}

func translatePickle(doc pickleDoc) Pickle {
	p := Pickle{
		ID:    doc.ID,
		Name:  doc.Name,
		URI:   doc.URI,
		Steps: make([]Step, 0, len(doc.Steps)),
	}
	for _, s := range doc.Steps {
		p.Steps = append(p.Steps, Step{
			Text:     s.Text,
			Location: loc.Location{URI: doc.URI, Line: s.Line, Column: s.Column},
			Argument: translateArgument(s),
		})
	}
	return p
}

func translateArgument(s stepDoc) *Argument {
	switch {
	case len(s.DataTable) > 0:
		return &Argument{Table: s.DataTable}
	case s.DocString != nil:
		return &Argument{Doc: &DocString{
			MediaType: s.DocString.MediaType,
			Content:   s.DocString.Content,
		}}
	default:
		return nil
	}
}
