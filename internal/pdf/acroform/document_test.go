package acroform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/testpdf"
)

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello world")},
		{"truncated header", []byte("%PDF-1.4\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			require.Error(t, err)
			assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeParse), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "member.pdf")
	require.NoError(t, os.WriteFile(path, testpdf.MemberForm(testpdf.Plain), 0o644))

	doc, err := LoadFile(path, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())

	hasForm, err := doc.HasForm()
	require.NoError(t, err)
	assert.True(t, hasForm)

	_, err = LoadFile(filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeIO))

	garbage := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("nope"), 0o644))
	_, err = LoadFile(garbage)
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeParse))
}

func TestFillAndSave(t *testing.T) {
	forEachLayout(t, func(t *testing.T, layout testpdf.Layout) {
		doc, err := Load(testpdf.SplitWidgetForm(layout), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, 2, doc.PageCount())

		out := filepath.Join(t.TempDir(), "filled.pdf")
		require.NoError(t, doc.FillAndSave(map[string]FieldValue{"count": Integer(99)}, out))

		reloaded, err := LoadFile(out)
		require.NoError(t, err)
		fields, err := reloaded.Fields()
		require.NoError(t, err)

		var count *FormField
		for i := range fields {
			if fields[i].Name == "count" {
				count = &fields[i]
			}
		}
		require.NotNil(t, count)
		assert.Equal(t, ptr(Integer(99)), count.CurrentValue)
	})
}

func TestFillAndSaveWriteError(t *testing.T) {
	doc, err := Load(testpdf.MemberForm(testpdf.Plain))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "no", "such", "dir", "filled.pdf")
	err = doc.FillAndSave(map[string]FieldValue{testpdf.MemberFieldName: Text("x")}, out)
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeIO))
}

func TestFormFieldString(t *testing.T) {
	v := Text("hi")
	f := FormField{Name: "a.b", Type: FieldTypeText, CurrentValue: &v}
	assert.Equal(t, `a.b (text) = "hi"`, f.String())

	empty := FormField{Name: "c", Type: FieldTypeButton}
	assert.Equal(t, "c (button) = <none>", empty.String())
}
