package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

type fillOptions struct {
	valuesFile string
	sets       []string
	output     string
	force      bool
	format     string
}

func (c *CLI) newFillCommand() *cobra.Command {
	var opts fillOptions

	cmd := &cobra.Command{
		Use:   "fill <pdf>",
		Short: "Fill form fields and write the result to a new file",
		Args:  cobra.ExactArgs(1),
		Example: `  # Values from a YAML (or JSON) file keyed by qualified field name
  pdf-forms fill form.pdf --values values.yaml --out filled.pdf

  # Values from stdin
  cat values.yaml | pdf-forms fill form.pdf --values - --out filled.pdf

  # Individual text values
  pdf-forms fill form.pdf --set member.name=Ada --set member.id=42 --out filled.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			return c.runFill(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.valuesFile, "values", "", "YAML or JSON file of values, '-' for stdin")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Text value as name=value, repeatable; overrides --values")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Output PDF path")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite the output file if it exists")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Report format: text, json")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (c *CLI) runFill(cmd *cobra.Command, input string, opts fillOptions) error {
	values, err := loadValues(cmd.InOrStdin(), opts.valuesFile, opts.sets)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.New("no values given; use --values or --set")
	}

	if !opts.force {
		if _, err := os.Stat(opts.output); err == nil {
			return fmt.Errorf("output file %s already exists (use --force to replace it)", opts.output)
		}
	}

	doc, err := acroform.LoadFile(input, acroform.WithLogger(c.logger))
	if err != nil {
		return err
	}

	out, report, err := doc.FillWithReport(values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return pdferrors.NewIOError(opts.output, err)
	}

	c.logger.Debug("wrote filled form", zap.String("output", opts.output), zap.Int("bytes", len(out)))

	if opts.format == FormatJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), opts.output, report)
	return nil
}

// loadValues merges the values file with --set pairs, the latter winning
func loadValues(stdin io.Reader, path string, sets []string) (map[string]acroform.FieldValue, error) {
	values := map[string]acroform.FieldValue{}

	if path != "" {
		var raw map[string]any
		var err error
		if path == "-" {
			raw, err = decodeValues(stdin)
		} else {
			raw, err = readValuesFile(path)
		}
		if err != nil {
			return nil, err
		}
		parsed, err := acroform.ParseValueMap(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid values: %w", err)
		}
		for name, v := range parsed {
			values[name] = v
		}
	}

	for _, pair := range sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", pair)
		}
		values[name] = acroform.Text(value)
	}
	return values, nil
}

func readValuesFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.NewIOError(path, err)
	}
	defer f.Close()
	return decodeValues(f)
}

// decodeValues reads a YAML mapping. JSON objects are valid YAML.
func decodeValues(r io.Reader) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	return raw, nil
}

func printReport(w io.Writer, output string, report *acroform.FillReport) {
	fmt.Fprintf(w, "Wrote %s\n", output)
	fmt.Fprintf(w, "Fields updated: %d\n", len(report.FieldsUpdated))
	for _, name := range report.FieldsUpdated {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintf(w, "Widget annotations updated: %d\n", report.AnnotationsUpdated)
	if len(report.Unmatched) > 0 {
		fmt.Fprintf(w, "Unmatched: %s\n", strings.Join(report.Unmatched, ", "))
	}
}
