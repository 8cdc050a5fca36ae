package main

import (
	"github.com/crowelogic/tiergate/pkg/formatter"
	"github.com/spf13/cobra"
)

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
}

// renderList writes records in the selected output format. Table output
// shows tableColumns; json and yaml carry every field.
func renderList(cmd *cobra.Command, kind string, records []formatter.Record, tableColumns []string) error {
	f, opts, err := selectFormatter(tableColumns)
	if err != nil {
		return err
	}
	return f.FormatList(cmd.OutOrStdout(), kind, records, opts)
}

// renderRecord writes a single record in the selected output format.
func renderRecord(cmd *cobra.Command, kind string, record formatter.Record, tableColumns []string) error {
	f, opts, err := selectFormatter(tableColumns)
	if err != nil {
		return err
	}
	return f.FormatRecord(cmd.OutOrStdout(), kind, record, opts)
}

func selectFormatter(tableColumns []string) (formatter.Formatter, formatter.FormatOptions, error) {
	f, err := formatter.Lookup(outputFormat)
	if err != nil {
		return nil, formatter.FormatOptions{}, err
	}
	var opts formatter.FormatOptions
	if f.Name() == "table" {
		opts.Columns = tableColumns
	}
	return f, opts, nil
}

func isTableOutput() bool {
	return outputFormat == "" || outputFormat == "table"
}
