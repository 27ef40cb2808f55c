package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is the event taxonomy for the tracked listing process.
type Category string

const (
	CategoryAllocationResults   Category = "AllocationResults"
	CategoryProspectus          Category = "Prospectus"
	CategoryPriceRange          Category = "PriceRange"
	CategoryGlobalOffering      Category = "GlobalOffering"
	CategoryShareIssuanceDetail Category = "ShareIssuanceDetail"
	CategoryOther               Category = "Other"
)

// Severity is ordered: comparisons with < and > are meaningful.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Rule maps a set of title keywords to a taxonomy category. Rules are
// evaluated in slice order and the first match wins, so more specific
// categories must come before generic ones.
type Rule struct {
	Category    Category `yaml:"category"`
	DisplayName string   `yaml:"display_name"`
	Keywords    []string `yaml:"keywords"`
}

// RuleSet is the complete classification configuration: entity aliases,
// the negative keyword list and the ordered category rules. It is data,
// tunable without touching any adapter code.
type RuleSet struct {
	Aliases          []string `yaml:"aliases"`
	NegativeKeywords []string `yaml:"negative_keywords"`
	Rules            []Rule   `yaml:"rules"`
}

// severityByCategory is a fixed lookup, deliberately not configurable:
// severity stays a deterministic function of category.
var severityByCategory = map[Category]Severity{
	CategoryAllocationResults:   SeverityHigh,
	CategoryProspectus:          SeverityHigh,
	CategoryPriceRange:          SeverityMedium,
	CategoryGlobalOffering:      SeverityHigh,
	CategoryShareIssuanceDetail: SeverityMedium,
	CategoryOther:               SeverityLow,
}

// SeverityFor returns the severity assigned to a category.
func SeverityFor(category Category) Severity {
	return severityByCategory[category]
}

// DefaultRuleSet returns the built-in rules for the tracked H-share listing,
// ordered so that allocation results and the prospectus take precedence over
// the generic H-share keywords they often co-occur with.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Aliases: []string{"用友", "YONYOU", "Yonyou"},
		NegativeKeywords: []string{
			"APPLICATION PROOF",
			"APPLICATION",
			"申请表格",
			"补递",
			"更正",
			"延期",
			"季度报告",
			"年度报告",
			"中期报告",
		},
		Rules: []Rule{
			{
				Category:    CategoryAllocationResults,
				DisplayName: "配售结果 / Allocation Results",
				Keywords:    []string{"ALLOCATION RESULT", "配售结果", "中签结果", "发售结果"},
			},
			{
				Category:    CategoryProspectus,
				DisplayName: "正式招股说明书（Prospectus）",
				Keywords:    []string{"PROSPECTUS", "招股说明书", "招股書"},
			},
			{
				Category:    CategoryPriceRange,
				DisplayName: "价格区间 / Price Range",
				Keywords:    []string{"PRICE RANGE", "价格区间", "发售区间", "发行价"},
			},
			{
				Category:    CategoryGlobalOffering,
				DisplayName: "全球发售 / Global Offering",
				Keywords:    []string{"GLOBAL OFFERING", "全球发售", "配售"},
			},
			{
				Category:    CategoryShareIssuanceDetail,
				DisplayName: "H股发行详情",
				Keywords:    []string{"H股", "H SHARE", "境外上市", "发行数量", "占总股本"},
			},
		},
	}
}

// LoadRuleSet reads a rule set from a YAML file. Sections missing from the
// file fall back to the built-in defaults, so a file containing only
// negative_keywords tunes noise suppression without redefining the taxonomy.
func LoadRuleSet(path string) (RuleSet, error) {
	rules := DefaultRuleSet()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	var override RuleSet
	if err := yaml.Unmarshal(data, &override); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(override.Aliases) > 0 {
		rules.Aliases = override.Aliases
	}
	if len(override.NegativeKeywords) > 0 {
		rules.NegativeKeywords = override.NegativeKeywords
	}
	if len(override.Rules) > 0 {
		rules.Rules = override.Rules
	}

	return rules, nil
}
