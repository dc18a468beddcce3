package svo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want Keyword
	}{
		{"plain", "alice", "alice"},
		{"uppercase", "Alice", "alice"},
		{"surrounding space", "  admin  ", "admin"},
		{"inner space", "Admin User", "admin-user"},
		{"whitespace run", "admin \t user", "admin-user"},
		{"already canonical", "admin-user", "admin-user"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tc.in)
			assert.Equal(t, tc.want, got)
			// Keyword form is a fixed point of normalization.
			assert.Equal(t, got, Normalize(string(got)))
		})
	}
}

func TestExtract_NilTemplate(t *testing.T) {
	t.Parallel()
	got, err := Extract(nil, []string{"anything"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtract_LiteralsAndRefs(t *testing.T) {
	t.Parallel()
	tpl := &Template{
		Subject:   Ref(1),
		Verb:      Lit("click"),
		Object:    Ref(2),
		Interface: Lit("web"),
	}

	got, err := Extract(tpl, []string{"  Admin User ", "#submit"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Keyword("admin-user"), got.Subject)
	assert.Equal(t, Keyword("click"), got.Verb)
	assert.Equal(t, "#submit", got.Object)
	assert.Equal(t, Keyword("web"), got.Interface)
	assert.True(t, got.HasObject())
}

func TestExtract_VerbKeepsSpelling(t *testing.T) {
	t.Parallel()
	// Only the subject is normalized; the validator sees the verb as
	// written and reports the mismatch with a suggestion.
	tpl := &Template{Subject: Lit("alice"), Verb: Lit("Click"), Interface: Lit("web")}

	got, err := Extract(tpl, nil)
	require.NoError(t, err)
	assert.Equal(t, Keyword("Click"), got.Verb)
}

func TestExtract_ObjectOptional(t *testing.T) {
	t.Parallel()
	tpl := &Template{Subject: Lit("alice"), Verb: Lit("waits"), Interface: Lit("clock")}

	got, err := Extract(tpl, nil)
	require.NoError(t, err)
	assert.Nil(t, got.Object)
	assert.False(t, got.HasObject())
}

func TestExtract_RefOutOfRange(t *testing.T) {
	t.Parallel()
	tpl := &Template{Subject: Ref(3), Verb: Lit("click"), Interface: Lit("web")}

	got, err := Extract(tpl, []string{"only", "two"})
	require.Error(t, err)
	assert.Nil(t, got)

	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 3, oor.Index)
	assert.Equal(t, 2, oor.Captures)
}

func TestExtract_ShortCircuitsOnFirstFailure(t *testing.T) {
	t.Parallel()
	// Subject fails before the object reference is ever resolved.
	tpl := &Template{
		Subject:   Ref(9),
		Verb:      Lit("click"),
		Object:    Ref(8),
		Interface: Lit("web"),
	}

	_, err := Extract(tpl, []string{"one"})
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 9, oor.Index)
}

func TestExtract_NonStringSubject(t *testing.T) {
	t.Parallel()
	tpl := &Template{Subject: Lit(42), Verb: Lit("click"), Interface: Lit("web")}

	_, err := Extract(tpl, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want a string")
}

func TestExtract_ObjectKeepsRawCapture(t *testing.T) {
	t.Parallel()
	tpl := &Template{
		Subject:   Lit("alice"),
		Verb:      Lit("type"),
		Object:    Ref(1),
		Interface: Lit("web"),
	}

	got, err := Extract(tpl, []string{"  MixedCase Input  "})
	require.NoError(t, err)
	assert.Equal(t, "  MixedCase Input  ", got.Object)
}
