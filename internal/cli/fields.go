package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
)

func (c *CLI) newFieldsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "fields <pdf>",
		Short: "List the terminal fields of a form",
		Args:  cobra.ExactArgs(1),
		Example: `  # Human readable listing
  pdf-forms fields form.pdf

  # Machine readable listing
  pdf-forms fields form.pdf --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			doc, err := acroform.LoadFile(args[0], acroform.WithLogger(c.logger))
			if err != nil {
				return err
			}
			fields, err := doc.Fields()
			if err != nil {
				return err
			}

			if format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), fields)
			}
			hasForm, err := doc.HasForm()
			if err != nil {
				return err
			}
			printFields(cmd.OutOrStdout(), fields, hasForm)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "Output format: text, json")
	return cmd
}

func printFields(w io.Writer, fields []acroform.FormField, hasForm bool) {
	if !hasForm {
		fmt.Fprintln(w, "No AcroForm in this document.")
		return
	}
	if len(fields) == 0 {
		fmt.Fprintln(w, "The form has no fields.")
		return
	}
	for _, f := range fields {
		fmt.Fprintln(w, f)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
