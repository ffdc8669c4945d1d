// Package hclfile loads estimation catalogs from HCL files, so teams can
// version their activity/driver/risk catalogs and technology presets next
// to their code.
//
// Example:
//
//	activity "API-CRUD" {
//	  name          = "CRUD API endpoints"
//	  base_days     = 4
//	  group         = "build"
//	  tech_category = "backend"
//	}
//
//	driver "COMPLEXITY" {
//	  name = "Business complexity"
//	  option "low"  { label = "Low"  multiplier = 1.0 }
//	  option "high" { label = "High" multiplier = 1.5 }
//	}
package hclfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"effort-estimate/core/catalog"
	"effort-estimate/core/types"
	"effort-estimate/internal/errors"
)

type catalogFile struct {
	Activities []activityBlock `hcl:"activity,block"`
	Drivers    []driverBlock   `hcl:"driver,block"`
	Risks      []riskBlock     `hcl:"risk,block"`
	Presets    []presetBlock   `hcl:"preset,block"`
}

type activityBlock struct {
	Code         string  `hcl:"code,label"`
	ID           *string `hcl:"id"`
	Name         string  `hcl:"name"`
	BaseDays     float64 `hcl:"base_days"`
	Group        *string `hcl:"group"`
	TechCategory string  `hcl:"tech_category"`
}

type driverBlock struct {
	Code    string        `hcl:"code,label"`
	ID      *string       `hcl:"id"`
	Name    string        `hcl:"name"`
	Options []optionBlock `hcl:"option,block"`
}

type optionBlock struct {
	Value      string  `hcl:"value,label"`
	Label      string  `hcl:"label"`
	Multiplier float64 `hcl:"multiplier"`
}

type riskBlock struct {
	Code   string  `hcl:"code,label"`
	ID     *string `hcl:"id"`
	Name   string  `hcl:"name"`
	Weight int     `hcl:"weight"`
}

type presetBlock struct {
	ID                   string             `hcl:"id,label"`
	Name                 string             `hcl:"name"`
	TechCategory         string             `hcl:"tech_category"`
	DefaultActivityCodes *[]string          `hcl:"default_activities"`
	DefaultDriverValues  *map[string]string `hcl:"default_drivers"`
	DefaultRiskCodes     *[]string          `hcl:"default_risks"`
}

// DirSource loads every .hcl file in a directory once and serves the
// result as a catalog.Source.
type DirSource struct {
	activities []types.Activity
	drivers    []types.Driver
	risks      []types.Risk
	presets    []types.TechnologyPreset
}

// NewDirSource parses all catalog files under dir
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "cannot read catalog directory", err)
	}

	parser := hclparse.NewParser()
	src := &DirSource{}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hcl") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, errors.Wrap(errors.TypeConfig, "catalog parse failed", diagError(path, diags))
		}

		var parsed catalogFile
		if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
			return nil, errors.Wrap(errors.TypeConfig, "catalog decode failed", diagError(path, diags))
		}
		src.append(parsed)
	}

	return src, nil
}

func diagError(path string, diags hcl.Diagnostics) error {
	return fmt.Errorf("%s: %s", path, diags.Error())
}

func (s *DirSource) append(parsed catalogFile) {
	for _, a := range parsed.Activities {
		s.activities = append(s.activities, types.Activity{
			ID:           orDerived(a.ID, "act", a.Code),
			Code:         a.Code,
			Name:         a.Name,
			BaseDays:     decimal.NewFromFloat(a.BaseDays),
			Group:        orEmpty(a.Group),
			TechCategory: types.TechCategory(a.TechCategory),
		})
	}

	for _, d := range parsed.Drivers {
		driver := types.Driver{
			ID:   orDerived(d.ID, "drv", d.Code),
			Code: d.Code,
			Name: d.Name,
		}
		for _, opt := range d.Options {
			driver.Options = append(driver.Options, types.DriverOption{
				Value:      opt.Value,
				Label:      opt.Label,
				Multiplier: decimal.NewFromFloat(opt.Multiplier),
			})
		}
		s.drivers = append(s.drivers, driver)
	}

	for _, r := range parsed.Risks {
		s.risks = append(s.risks, types.Risk{
			ID:     orDerived(r.ID, "rsk", r.Code),
			Code:   r.Code,
			Name:   r.Name,
			Weight: r.Weight,
		})
	}

	for _, p := range parsed.Presets {
		preset := types.TechnologyPreset{
			ID:           p.ID,
			Name:         p.Name,
			TechCategory: types.TechCategory(p.TechCategory),
		}
		if p.DefaultActivityCodes != nil {
			preset.DefaultActivityCodes = *p.DefaultActivityCodes
		}
		if p.DefaultDriverValues != nil {
			preset.DefaultDriverValues = *p.DefaultDriverValues
		}
		if p.DefaultRiskCodes != nil {
			preset.DefaultRiskCodes = *p.DefaultRiskCodes
		}
		s.presets = append(s.presets, preset)
	}
}

// orDerived falls back to a prefix-code id when no explicit id is set
func orDerived(id *string, prefix, code string) string {
	if id != nil && *id != "" {
		return *id
	}
	return prefix + "-" + strings.ToLower(code)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FetchActivities implements catalog.Source
func (s *DirSource) FetchActivities(ctx context.Context) ([]types.Activity, error) {
	return s.activities, nil
}

// FetchDrivers implements catalog.Source
func (s *DirSource) FetchDrivers(ctx context.Context) ([]types.Driver, error) {
	return s.drivers, nil
}

// FetchRisks implements catalog.Source
func (s *DirSource) FetchRisks(ctx context.Context) ([]types.Risk, error) {
	return s.risks, nil
}

// FetchPresets implements catalog.Source
func (s *DirSource) FetchPresets(ctx context.Context) ([]types.TechnologyPreset, error) {
	return s.presets, nil
}

var _ catalog.Source = (*DirSource)(nil)

// Validate parses a catalog directory and reports structural problems the
// HCL decoder cannot see: duplicate codes, presets referencing unknown
// entries, drivers without options.
func Validate(dir string) []string {
	src, err := NewDirSource(dir)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string

	seen := make(map[string]bool)
	for _, a := range src.activities {
		if seen["activity:"+a.Code] {
			problems = append(problems, "duplicate activity code "+a.Code)
		}
		seen["activity:"+a.Code] = true
		if a.BaseDays.IsNegative() {
			problems = append(problems, "activity "+a.Code+" has negative base days")
		}
	}

	for _, d := range src.drivers {
		if seen["driver:"+d.Code] {
			problems = append(problems, "duplicate driver code "+d.Code)
		}
		seen["driver:"+d.Code] = true
		if len(d.Options) == 0 {
			problems = append(problems, "driver "+d.Code+" has no options")
		}
		for _, opt := range d.Options {
			if opt.Multiplier.IsNegative() {
				problems = append(problems, "driver "+d.Code+" option "+opt.Value+" has negative multiplier")
			}
		}
	}

	for _, r := range src.risks {
		if seen["risk:"+r.Code] {
			problems = append(problems, "duplicate risk code "+r.Code)
		}
		seen["risk:"+r.Code] = true
		if r.Weight < 0 {
			problems = append(problems, "risk "+r.Code+" has negative weight")
		}
	}

	set := catalog.NewSet(src.activities, src.drivers, src.risks, src.presets)
	for _, p := range src.presets {
		for _, code := range p.DefaultActivityCodes {
			if _, ok := set.ActivityByCode(code); !ok {
				problems = append(problems, "preset "+p.ID+" references unknown activity "+code)
			}
		}
		for code := range p.DefaultDriverValues {
			if _, ok := set.DriverByCode(code); !ok {
				problems = append(problems, "preset "+p.ID+" references unknown driver "+code)
			}
		}
		for _, code := range p.DefaultRiskCodes {
			if _, ok := set.RiskByCode(code); !ok {
				problems = append(problems, "preset "+p.ID+" references unknown risk "+code)
			}
		}
	}

	return problems
}
