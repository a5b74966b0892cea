package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pivolan/stay_dashboard/pipeline"
	"github.com/pivolan/stay_dashboard/warehouse"
)

// filterFlags mirror the dashboard sidebar on the command line.
type filterFlags struct {
	min, max float64
	ages     []string
	cols     []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Float64Var(&f.min, "min", 0, "smallest length of stay (default: dataset minimum)")
	fl.Float64Var(&f.max, "max", 0, "largest length of stay (default: dataset maximum)")
	fl.StringArrayVar(&f.ages, "age", nil, "age group to include, repeatable (default: all)")
	fl.StringSliceVar(&f.cols, "col", nil, "columns to show/export, slugs or headers (default: age_group,gender,length_of_stay)")
}

func (f *filterFlags) request(cmd *cobra.Command) DashboardRequest {
	req := DashboardRequest{
		AgeGroups:    f.ages,
		AllAgeGroups: !cmd.Flags().Changed("age"),
		Columns:      f.cols,
	}
	if cmd.Flags().Changed("min") {
		req.MinStay = &f.min
	}
	if cmd.Flags().Changed("max") {
		req.MaxStay = &f.max
	}
	return req
}

// runDashboard performs one pass and turns failures into the user message.
func runDashboard(cmd *cobra.Command, f *filterFlags) (*DashboardState, error) {
	st, err := NewDashboard(newCache(), logger).Build(f.request(cmd))
	if err != nil {
		_, msg := describeError(err)
		return nil, errors.New(msg)
	}
	return st, nil
}

var (
	summaryFilters filterFlags
	summaryPreview int

	exportFilters filterFlags
	exportOut     string
	exportFormat  string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print metrics, admission type means and a preview of the filtered records",
	RunE:  runSummary,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered records to a CSV or XLSX file",
	RunE:  runExport,
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Load the cleaned dataset into ClickHouse (DB_DSN)",
	RunE:  runPublish,
}

func init() {
	summaryFilters.register(summaryCmd)
	summaryCmd.Flags().IntVar(&summaryPreview, "preview", 10, "number of records to print, 0 for none")

	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: EXPORT_NAME with the format extension)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")

	rootCmd.AddCommand(summaryCmd, exportCmd, publishCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	st, err := runDashboard(cmd, &summaryFilters)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), st, summaryPreview)
	return nil
}

func printSummary(w io.Writer, st *DashboardState, preview int) {
	fmt.Fprintf(w, "Source: %s (%d records, %d dropped)\n", st.Dataset.Source, st.Dataset.Len(), st.Dataset.Dropped)
	fmt.Fprintf(w, "Length of stay %s to %s\n\n", pipeline.FormatStay(st.Criteria.MinStay), pipeline.FormatStay(st.Criteria.MaxStay))
	fmt.Fprintln(w, GenerateMetricsTable(st.Metrics))
	if st.Notice != "" {
		fmt.Fprintln(w, st.Notice)
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, GenerateGroupsTable(st.Groups))
	if preview > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, GenerateRowsTable(st.View, st.Columns, preview))
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "xlsx" {
		return fmt.Errorf("--format must be csv or xlsx, got %q", exportFormat)
	}
	st, err := runDashboard(cmd, &exportFilters)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if exportFormat == "xlsx" {
		err = pipeline.WriteXLSX(&buf, st.View, st.Columns)
	} else {
		err = pipeline.WriteCSV(&buf, st.View, st.Columns)
	}
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = cfg.ExportName + "." + exportFormat
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return err
	}
	logger.Info().Str("file", out).Int("rows", len(st.View)).Msg("export written")
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ds, err := newCache().Get()
	if err != nil {
		_, msg := describeError(err)
		return errors.New(msg)
	}
	db, err := warehouse.Open(cfg.DbDsn)
	if err != nil {
		return err
	}
	table, err := warehouse.Publish(db, ds, logger)
	if err != nil {
		return err
	}
	groups, err := warehouse.AdmissionMeans(db, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d records to %s\n", ds.Len(), table)
	fmt.Fprintln(cmd.OutOrStdout(), GenerateGroupsTable(groups))
	return nil
}
