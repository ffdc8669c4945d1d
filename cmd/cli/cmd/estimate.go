// Package cmd - estimate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"effort-estimate/adapters/storage"
	"effort-estimate/core/finalize"
	"effort-estimate/internal/config"
)

var (
	estActivities    []string
	estPreset        string
	estDriverValues  []string
	estRisks         []string
	estFormat        string
	estSave          bool
	estRequirementID string
	estTitle         string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Compute an estimate from explicit selections",
	Long: `Compute a deterministic effort estimate from activity codes, driver
values and risk codes, optionally seeded by a technology preset.

Driver values passed with --driver override preset defaults; omitting
both --driver and a preset leaves every driver at its neutral option.

Examples:
  effort-estimate estimate --activities ANALYSIS,DESIGN,API-CRUD
  effort-estimate estimate --preset preset-backend --driver COMPLEXITY=high
  effort-estimate estimate --activities TESTING --risks LEGACY,VAGUE-REQS --format json`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringSliceVarP(&estActivities, "activities", "a", nil, "activity codes (comma separated)")
	estimateCmd.Flags().StringVarP(&estPreset, "preset", "p", "", "technology preset id")
	estimateCmd.Flags().StringSliceVarP(&estDriverValues, "driver", "d", nil, "driver value as CODE=value (repeatable)")
	estimateCmd.Flags().StringSliceVarP(&estRisks, "risks", "r", nil, "risk codes (comma separated)")
	estimateCmd.Flags().StringVarP(&estFormat, "format", "f", "table", "output format (table, json)")
	estimateCmd.Flags().BoolVar(&estSave, "save", false, "persist the estimate as a snapshot")
	estimateCmd.Flags().StringVar(&estRequirementID, "requirement", "", "requirement id for the saved snapshot")
	estimateCmd.Flags().StringVar(&estTitle, "title", "", "title for the saved snapshot")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(estActivities) == 0 && estPreset == "" {
		return fmt.Errorf("at least one of --activities or --preset is required")
	}

	catalogs, err := buildCatalogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	req := finalize.Request{
		ActivityCodes: estActivities,
		PresetID:      estPreset,
	}
	if len(estDriverValues) > 0 {
		req.ManualDriverValues = make(map[string]string, len(estDriverValues))
		for _, pair := range estDriverValues {
			code, value, found := strings.Cut(pair, "=")
			if !found {
				return fmt.Errorf("invalid --driver %q, expected CODE=value", pair)
			}
			req.ManualDriverValues[code] = value
		}
	}
	if estRisks != nil {
		req.ManualRiskCodes = estRisks
	}

	// Preset-only runs take the preset's default activities
	if len(req.ActivityCodes) == 0 {
		if preset, ok := catalogs.PresetByID(estPreset); ok {
			req.ActivityCodes = preset.DefaultActivityCodes
		}
	}

	finalized := finalize.Finalize(req, catalogs)

	if estSave {
		if err := saveSnapshot(ctx, finalized); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	if estFormat == "json" {
		return printJSON(finalized)
	}
	printFinalized(finalized)
	return nil
}

func saveSnapshot(ctx context.Context, finalized finalize.Finalized) error {
	store, err := storage.Open(config.Get().Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	snap := &storage.Snapshot{
		RequirementID:        estRequirementID,
		Title:                estTitle,
		Input:                finalized.Input,
		Result:               finalized.Result,
		DriverSource:         finalized.DriverSource,
		RiskSource:           finalized.RiskSource,
		DroppedActivityCodes: finalized.DroppedActivityCodes,
		DroppedRiskCodes:     finalized.DroppedRiskCodes,
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	fmt.Printf("Saved snapshot %s\n\n", snap.ID)
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printFinalized(f finalize.Finalized) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ACTIVITY\tBASE DAYS")
	for _, a := range f.Input.Activities {
		name := a.Code
		if a.AISuggested {
			name += " (suggested)"
		}
		fmt.Fprintf(w, "%s\t%s\n", name, a.BaseDays)
	}
	w.Flush()

	if len(f.Input.Drivers) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "DRIVER (%s)\tVALUE\tMULTIPLIER\n", f.DriverSource)
		for _, d := range f.Input.Drivers {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Code, d.Value, d.Multiplier)
		}
		w.Flush()
	}

	if len(f.Input.Risks) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "RISK (%s)\tWEIGHT\n", f.RiskSource)
		for _, r := range f.Input.Risks {
			fmt.Fprintf(w, "%s\t%d\n", r.Code, r.Weight)
		}
		w.Flush()
	}

	if len(f.DroppedActivityCodes) > 0 {
		fmt.Printf("\nDropped unknown activities: %s\n", strings.Join(f.DroppedActivityCodes, ", "))
	}
	if len(f.DroppedRiskCodes) > 0 {
		fmt.Printf("Dropped unknown risks: %s\n", strings.Join(f.DroppedRiskCodes, ", "))
	}

	r := f.Result
	fmt.Println()
	fmt.Printf("Base days:          %s\n", r.BaseDays)
	fmt.Printf("Driver multiplier:  %s\n", r.DriverMultiplier)
	fmt.Printf("Subtotal:           %s\n", r.Subtotal)
	fmt.Printf("Risk score:         %d (contingency %d%%)\n", r.RiskScore, r.ContingencyPercent)
	fmt.Printf("Contingency days:   %s\n", r.ContingencyDays)
	fmt.Printf("Total days:         %s\n", r.TotalDays)
}
