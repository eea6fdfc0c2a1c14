package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/http/client"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var (
	profilePath string
	serverURL   string
	seed        int64
	format      string
)

// exampleProfile is shown in the generate help text
const exampleProfile = `main_type: 痰湿内盛
sub_type: 脾虚不运
gender: 女
age: 35
height: 165
weight: 70
activity: 中等体力
diseases: [高血压]
preferred_cuisine: 粤菜
season: 夏季
`

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a seven-day menu for a profile",
	Long: "Generate reads a YAML profile and prints a seven-day menu.\n\nExample profile:\n\n" +
		indent(exampleProfile, "  "),
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Show BMI, calorie target and recommended medicinals for a profile",
	Args:  cobra.NoArgs,
	RunE:  runAssess,
}

var constitutionsCmd = &cobra.Command{
	Use:   "constitutions",
	Short: "List the supported constitution types",
	Args:  cobra.NoArgs,
	RunE:  runConstitutions,
}

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, assessCmd} {
		cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "YAML profile file (required)")
		_ = cmd.MarkFlagRequired("profile")
	}
	for _, cmd := range []*cobra.Command{generateCmd, assessCmd, constitutionsCmd} {
		cmd.Flags().StringVar(&serverURL, "server", "", "API base URL; plans are generated in-process when empty")
		cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	}
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible plan")
}

// withPlanService hands fn either a remote client or an in-process service
func withPlanService(ctx context.Context, fn func(inbound.PlanService) error) error {
	if serverURL != "" {
		return fn(client.NewAPIClient(serverURL, timeout, log))
	}

	var service inbound.PlanService
	stop, err := startCore(ctx, &service)
	if err != nil {
		return err
	}
	defer stop()
	return fn(service)
}

func loadProfile(path string) (inbound.ProfileCommand, error) {
	var profile inbound.ProfileCommand
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

func checkFormat() error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}
	req := inbound.GeneratePlanCommand{Profile: profile}
	if cmd.Flags().Changed("seed") {
		req.Seed = &seed
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return withPlanService(ctx, func(service inbound.PlanService) error {
		plan, err := service.GeneratePlan(ctx, req)
		if err != nil {
			return err
		}
		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), plan)
		}
		return renderPlan(cmd.OutOrStdout(), plan)
	})
}

func runAssess(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return withPlanService(ctx, func(service inbound.PlanService) error {
		assessment, err := service.AssessProfile(ctx, profile)
		if err != nil {
			return err
		}
		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), assessment)
		}
		renderAssessment(cmd.OutOrStdout(), assessment)
		return nil
	})
}

func runConstitutions(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return withPlanService(ctx, func(service inbound.PlanService) error {
		profiles, err := service.ListConstitutions(ctx)
		if err != nil {
			return err
		}
		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), profiles)
		}
		out := cmd.OutOrStdout()
		for _, p := range profiles {
			fmt.Fprintf(out, "%s\n  症状: %s\n  推荐: %s\n  药食: %s\n", p.Type, p.Symptoms, p.Recommended, strings.Join(p.Medicinals, "、"))
		}
		return nil
	})
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderAssessment(w io.Writer, a *inbound.ProfileAssessmentDTO) {
	fmt.Fprintf(w, "BMI: %.1f (%s)\n", a.BMI, a.BMIBand)
	fmt.Fprintf(w, "每日热量目标: %d千卡\n", a.CalorieTarget)
	fmt.Fprintf(w, "推荐药食: %s\n", strings.Join(a.RecommendedMedicinals, "、"))
	if a.DietTip != "" {
		fmt.Fprintf(w, "饮食提示: %s\n", a.DietTip)
	}
}

func renderPlan(w io.Writer, plan *inbound.PlanDTO) error {
	renderAssessment(w, &plan.Assessment)
	fmt.Fprintf(w, "种子: %d\n", plan.Seed)

	for i := range plan.Menu.Days {
		day := plan.Menu.Days[i]
		fmt.Fprintf(w, "\n%s\n", diet.DayKey(day.Day))
		for _, slot := range diet.Slots() {
			meal, err := day.Meal(slot)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s  %s | %s\n", slot, meal.Staple, strings.Join(meal.Dishes, "、"))
			fmt.Fprintf(w, "        %s  %s\n", meal.Calories, meal.Macros)
		}
	}
	return nil
}
