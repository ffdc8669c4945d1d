// Package cmd - interview command
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"effort-estimate/adapters/ai"
	"effort-estimate/adapters/storage"
	"effort-estimate/core/catalog"
	"effort-estimate/core/interview"
	"effort-estimate/internal/config"
)

var (
	ivPreset        string
	ivSave          bool
	ivRequirementID string
	ivTitle         string
)

// interviewCmd represents the interview command
var interviewCmd = &cobra.Command{
	Use:   "interview [description]",
	Short: "Run an AI-assisted estimation interview",
	Long: `Interview the suggestion service about a requirement and turn its
clarifying questions and suggestions into a reconciled estimate.

The description must be at least 15 characters. Suggested activities
incompatible with the chosen technology preset are dropped.

Examples:
  effort-estimate interview "Build a reporting API for the finance team"
  effort-estimate interview --preset preset-backend "Migrate order data to the new schema"`,
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().StringVarP(&ivPreset, "preset", "p", "", "technology preset id")
	interviewCmd.Flags().BoolVar(&ivSave, "save", false, "persist the outcome as a snapshot")
	interviewCmd.Flags().StringVar(&ivRequirementID, "requirement", "", "requirement id for the saved snapshot")
	interviewCmd.Flags().StringVar(&ivTitle, "title", "", "title for the saved snapshot")
}

func runInterview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	catalogs, err := buildCatalogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		description, err = promptDescription()
		if err != nil {
			return err
		}
	}

	presetID := ivPreset
	if presetID == "" {
		presetID, err = promptPreset(catalogs)
		if err != nil {
			return err
		}
	}

	client := ai.NewClient(config.Get().AI)
	iv := interview.NewInterviewer(client, client, catalogs)

	fmt.Println("Generating questions...")
	if err := iv.GenerateQuestions(ctx, description, presetID); err != nil {
		return err
	}

	for _, q := range iv.Questions() {
		answer, err := promptAnswer(q)
		if err != nil {
			return err
		}
		iv.AnswerQuestion(q.ID, answer)
	}

	fmt.Println("\nGenerating estimate...")
	if err := iv.GenerateEstimate(ctx); err != nil {
		return err
	}

	outcome := iv.Outcome()
	fmt.Println()
	printFinalized(outcome.Finalized)

	if outcome.Response != nil && outcome.Response.ConfidenceScore > 0 {
		fmt.Printf("\nSuggestion confidence: %.0f%%\n", outcome.Response.ConfidenceScore*100)
	}

	if ivSave {
		return saveInterviewSnapshot(ctx, outcome)
	}
	return nil
}

func promptDescription() (string, error) {
	prompt := promptui.Prompt{
		Label: "Requirement description",
		Validate: func(input string) error {
			if len(strings.TrimSpace(input)) < 15 {
				return fmt.Errorf("description must be at least 15 characters")
			}
			return nil
		},
	}
	return prompt.Run()
}

func promptPreset(catalogs *catalog.Set) (string, error) {
	var items []string
	var ids []string
	for _, p := range catalogs.Presets {
		items = append(items, fmt.Sprintf("%s (%s)", p.Name, p.TechCategory))
		ids = append(ids, p.ID)
	}

	sel := promptui.Select{
		Label: "Technology preset",
		Items: items,
	}
	i, _, err := sel.Run()
	if err != nil {
		return "", err
	}
	return ids[i], nil
}

func promptAnswer(q interview.Question) (string, error) {
	label := q.Text
	if q.Required {
		label += " (required)"
	}

	if len(q.Options) > 0 {
		sel := promptui.Select{
			Label: label,
			Items: q.Options,
		}
		_, answer, err := sel.Run()
		return answer, err
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if q.Required && strings.TrimSpace(input) == "" {
				return fmt.Errorf("an answer is required")
			}
			return nil
		},
	}
	return prompt.Run()
}

func saveInterviewSnapshot(ctx context.Context, outcome *interview.Outcome) error {
	store, err := storage.Open(config.Get().Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	snap := &storage.Snapshot{
		RequirementID:        ivRequirementID,
		Title:                ivTitle,
		Input:                outcome.Finalized.Input,
		Result:               outcome.Finalized.Result,
		DriverSource:         outcome.Finalized.DriverSource,
		RiskSource:           outcome.Finalized.RiskSource,
		DroppedActivityCodes: outcome.Finalized.DroppedActivityCodes,
		DroppedRiskCodes:     outcome.Finalized.DroppedRiskCodes,
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	fmt.Printf("\nSaved snapshot %s\n", snap.ID)
	return nil
}
