package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/testpdf"
)

func TestForms_ListFields(t *testing.T) {
	forms := NewForms(nil)

	for _, layout := range testpdf.Layouts {
		t.Run(layout.String(), func(t *testing.T) {
			result, err := forms.ListFields(testpdf.SplitWidgetForm(layout))
			require.NoError(t, err)

			assert.True(t, result.HasForm)
			assert.Equal(t, 2, result.Pages)
			assert.Equal(t, len(result.Fields), result.Count)

			names := make([]string, 0, len(result.Fields))
			for _, f := range result.Fields {
				names = append(names, f.Name)
			}
			assert.Equal(t, []string{"A.B.C[1]", "name", "agree", "count", "anon"}, names)
		})
	}
}

func TestForms_ListFieldsNoForm(t *testing.T) {
	result, err := NewForms(nil).ListFields(testpdf.NoForm(testpdf.Plain))
	require.NoError(t, err)

	assert.False(t, result.HasForm)
	assert.Empty(t, result.Fields)
	assert.Zero(t, result.Count)
}

func TestForms_ListFieldsMalformed(t *testing.T) {
	_, err := NewForms(nil).ListFields([]byte("%PDF-1.7\nnot really"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pdferrors.ErrParse)
}

func TestForms_Fill(t *testing.T) {
	forms := NewForms(nil)

	out, report, err := forms.Fill(testpdf.SplitWidgetForm(testpdf.Plain), map[string]acroform.FieldValue{
		"name":    acroform.Text("Ada"),
		"missing": acroform.Text("x"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, report.FieldsUpdated)
	assert.Equal(t, 2, report.AnnotationsUpdated)
	assert.Equal(t, []string{"missing"}, report.Unmatched)

	result, err := forms.ListFields(out)
	require.NoError(t, err)
	for _, f := range result.Fields {
		if f.Name == "name" {
			require.NotNil(t, f.CurrentValue)
			got, ok := f.CurrentValue.TextValue()
			assert.True(t, ok)
			assert.Equal(t, "Ada", got)
		}
	}
}

func TestForms_FillNoForm(t *testing.T) {
	_, _, err := NewForms(nil).Fill(testpdf.NoForm(testpdf.Plain), map[string]acroform.FieldValue{
		"name": acroform.Text("Ada"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pdferrors.ErrMissingEntry)
}
