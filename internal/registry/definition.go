package registry

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"regexp"

	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/svo"
)

// Metadata is the optional semantic annotation of a step definition: the
// interface the step acts through and the subject-verb-object template
// instantiated for each matched step.
type Metadata struct {
	Interface svo.Keyword
	SVO       *svo.Template
}

// StepDefinition binds a step pattern to its handler.
//
// ID is derived from the pattern source text alone, so the same pattern
// registers under the same ID in every process. Arity is the handler's
// declared parameter count; whether that is compatible with a concrete
// step is decided at bind time against the pattern's capture count.
type StepDefinition struct {
	ID       string
	Source   string
	Pattern  *regexp.Regexp
	Location loc.Location
	Arity    int
	Handler  any
	Meta     *Metadata
}

// Match runs the definition's pattern against full step text and returns
// the ordered captures. Partial matches do not count: the pattern is
// anchored at both ends when compiled.
func (d *StepDefinition) Match(text string) ([]string, bool) {
	m := d.Pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// newDefinition compiles and validates one registration.
func newDefinition(pattern string, handler any, location loc.Location, meta *Metadata) (*StepDefinition, error) {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func {
		return nil, &InvalidHandlerError{Pattern: pattern, Location: location, Reason: "handler is not a function"}
	}
	if t.IsVariadic() {
		return nil, &VariadicStepError{Pattern: pattern, Location: location}
	}
	switch t.NumOut() {
	case 0, 1:
	case 2:
		if !t.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
			return nil, &InvalidHandlerError{
				Pattern:  pattern,
				Location: location,
				Reason:   "second return value must be an error",
			}
		}
	default:
		return nil, &InvalidHandlerError{
			Pattern:  pattern,
			Location: location,
			Reason:   fmt.Sprintf("handlers return at most two values, got %d", t.NumOut()),
		}
	}

	compiled, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid step pattern %q at %s: %w", pattern, location, err)
	}

	return &StepDefinition{
		ID:       patternID(pattern),
		Source:   pattern,
		Pattern:  compiled,
		Location: location,
		Arity:    t.NumIn(),
		Handler:  handler,
		Meta:     normalizeMeta(meta),
	}, nil
}

// normalizeMeta fills the template's interface slot from the metadata-level
// interface when the template leaves it open, so extraction sees one
// complete template.
func normalizeMeta(meta *Metadata) *Metadata {
	if meta == nil || meta.SVO == nil || meta.Interface == "" || !meta.SVO.Interface.IsZero() {
		return meta
	}
	tpl := *meta.SVO
	tpl.Interface = svo.Lit(string(meta.Interface))
	return &Metadata{Interface: meta.Interface, SVO: &tpl}
}

// patternID returns the stable identifier of a pattern: the FNV-1a hash of
// its source text, rendered as fixed-width hex.
func patternID(pattern string) string {
	h := fnv.New64a()
	h.Write([]byte(pattern))
	return fmt.Sprintf("%016x", h.Sum64())
}
