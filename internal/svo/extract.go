package svo

import "fmt"

// OutOfRangeError reports a template reference pointing past the captures a
// step actually produced.
type OutOfRangeError struct {
	Index    int
	Captures int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("svo placeholder $%d out of range: step captured %d value(s)", e.Index, e.Captures)
}

// Extract builds the SVOI instance for one matched step. A nil template
// yields (nil, nil): the step simply carries no mapping. The first slot
// that fails to resolve aborts extraction.
//
// Subject is normalized to keyword form. Verb and Interface pass through
// as written in the template; whether they name known vocabulary is the
// validator's concern, not the extractor's. Object is kept untouched.
func Extract(tpl *Template, captures []string) (*SVOI, error) {
	if tpl == nil {
		return nil, nil
	}

	subject, err := resolveKeyword("subject", tpl.Subject, captures, true)
	if err != nil {
		return nil, err
	}
	verb, err := resolveKeyword("verb", tpl.Verb, captures, false)
	if err != nil {
		return nil, err
	}
	iface, err := resolveKeyword("interface", tpl.Interface, captures, false)
	if err != nil {
		return nil, err
	}

	out := &SVOI{Subject: subject, Verb: verb, Interface: iface}

	if !tpl.Object.IsZero() {
		obj, err := tpl.Object.resolve(captures)
		if err != nil {
			return nil, err
		}
		out.Object = obj
	}
	return out, nil
}

// resolveKeyword resolves a slot that must end up as a keyword. Only the
// subject is normalized; the other slots keep their spelling.
func resolveKeyword(slot string, v Value, captures []string, normalize bool) (Keyword, error) {
	if v.IsZero() {
		return "", nil
	}
	raw, err := v.resolve(captures)
	if err != nil {
		return "", err
	}

	var text string
	switch k := raw.(type) {
	case Keyword:
		text = string(k)
	case string:
		text = k
	default:
		return "", fmt.Errorf("svo %s resolved to %T, want a string", slot, raw)
	}

	if normalize {
		return Normalize(text), nil
	}
	return Keyword(text), nil
}

func (v Value) resolve(captures []string) (any, error) {
	if v.ref == 0 {
		return v.lit, nil
	}
	if v.ref < 1 || v.ref > len(captures) {
		return nil, &OutOfRangeError{Index: v.ref, Captures: len(captures)}
	}
	return captures[v.ref-1], nil
}
