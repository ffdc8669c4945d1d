// Package cmd - catalog command
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"effort-estimate/adapters/catalog/hclfile"
)

var catalogFormat string

// catalogCmd groups catalog subcommands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate estimation catalogs",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configured catalogs",
	RunE:  runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Validate an HCL catalog directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidate,
}

func init() {
	catalogShowCmd.Flags().StringVarP(&catalogFormat, "format", "f", "table", "output format (table, json)")
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	catalogs, err := buildCatalogs(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	if catalogFormat == "json" {
		return printJSON(map[string]interface{}{
			"activities": catalogs.Activities,
			"drivers":    catalogs.Drivers,
			"risks":      catalogs.Risks,
			"presets":    catalogs.Presets,
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACTIVITY\tNAME\tBASE DAYS\tCATEGORY")
	for _, a := range catalogs.Activities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Code, a.Name, a.BaseDays, a.TechCategory)
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DRIVER\tNAME\tOPTIONS")
	for _, d := range catalogs.Drivers {
		options := ""
		for i, opt := range d.Options {
			if i > 0 {
				options += ", "
			}
			options += fmt.Sprintf("%s=%s", opt.Value, opt.Multiplier)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Code, d.Name, options)
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RISK\tNAME\tWEIGHT")
	for _, r := range catalogs.Risks {
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.Code, r.Name, r.Weight)
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tNAME\tCATEGORY\tDEFAULT ACTIVITIES")
	for _, p := range catalogs.Presets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.TechCategory, len(p.DefaultActivityCodes))
	}
	w.Flush()

	return nil
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	problems := hclfile.Validate(args[0])
	if len(problems) == 0 {
		fmt.Println("Catalog is valid.")
		return nil
	}

	for _, p := range problems {
		fmt.Printf("  %s\n", p)
	}
	return fmt.Errorf("catalog has %d problem(s)", len(problems))
}
