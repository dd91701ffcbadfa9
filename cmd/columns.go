// =============================================================================
// Presentielijst - Columns Command
// =============================================================================
//
// Shows how the headers of a member export are mapped onto the fields the
// lists need, so a wrong export can be spotted before processing.
//
// COMMAND USAGE:
//   presentielijst columns --file leden.csv [--values function]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presentielijst/internal/csvparser"
	"github.com/ginjaninja78/presentielijst/internal/mapping"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

var columnsFlags struct {
	file      string
	delimiter string
	values    string
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show how the columns of a member export are recognised",
	Long: `The columns command reads the header of a member export and lists, per
field, the column it was matched to. Required fields without a column are
reported; use 'process --map field=column' to choose one by hand.

With --values, the distinct values of one column are listed as well, which
helps to check the roles in the export.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		delimiterName := columnsFlags.delimiter
		if delimiterName == "" {
			delimiterName = appConfig.Delimiter
		}
		delimiter, err := csvparser.ParseDelimiter(delimiterName)
		if err != nil {
			return err
		}

		doc, err := csvparser.ParseFile(columnsFlags.file, csvparser.Options{Delimiter: delimiter, Encoding: appConfig.Encoding})
		if err != nil {
			return err
		}
		return printColumns(cmd.OutOrStdout(), doc, columnsFlags.values)
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)

	columnsCmd.Flags().StringVarP(&columnsFlags.file, "file", "f", "", "Path to the member export (CSV)")
	columnsCmd.Flags().StringVar(&columnsFlags.delimiter, "delimiter", "", `Field separator: ";", ",", "tab", "|" or "auto"`)
	columnsCmd.Flags().StringVar(&columnsFlags.values, "values", "", "List the distinct values of this field or column")
	columnsCmd.MarkFlagRequired("file")
}

// printColumns writes the field table, the missing fields and optionally the
// distinct values of one column.
func printColumns(out io.Writer, doc *csvparser.Document, values string) error {
	resolution := mapping.ResolveColumns(doc.Headers)

	fmt.Fprintf(out, "Bestand: %s (%d rijen, scheidingsteken %q, %s)\n\n",
		doc.SourceFile, len(doc.Rows), doc.Delimiter, doc.Encoding)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Veld\tKolom\tStatus")
	required := make(map[types.Field]bool, len(types.RequiredFields))
	for _, field := range types.RequiredFields {
		required[field] = true
	}
	for _, field := range types.Fields {
		column, ok := resolution.Mapping.Column(field)
		status := "gevonden"
		switch {
		case !ok && required[field]:
			column, status = "-", "ONTBREEKT (verplicht)"
		case !ok:
			column, status = "-", "niet gevonden"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", mapping.FieldLabels[field], column, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !resolution.OK() {
		labels := make([]string, len(resolution.Missing))
		for i, field := range resolution.Missing {
			labels[i] = mapping.FieldLabels[field]
		}
		fmt.Fprintf(out, "\nOntbrekende verplichte kolommen: %s\n", strings.Join(labels, ", "))
	}

	if len(doc.Warnings) > 0 {
		fmt.Fprintf(out, "\n%d rij(en) met een afwijkend aantal velden.\n", len(doc.Warnings))
	}

	if values == "" {
		return nil
	}

	header := values
	if field, ok := lookupField(values); ok {
		if column, found := resolution.Mapping.Column(field); found {
			header = column
		}
	}
	fmt.Fprintf(out, "\nWaarden in kolom %q:\n", header)
	for _, value := range doc.UniqueValues(header) {
		fmt.Fprintf(out, "  %s\n", value)
	}
	return nil
}
