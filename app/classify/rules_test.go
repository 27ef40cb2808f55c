package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRuleSet_Order(t *testing.T) {
	rules := DefaultRuleSet()

	want := []Category{
		CategoryAllocationResults,
		CategoryProspectus,
		CategoryPriceRange,
		CategoryGlobalOffering,
		CategoryShareIssuanceDetail,
	}

	if len(rules.Rules) != len(want) {
		t.Fatalf("Expected %d rules, got %d", len(want), len(rules.Rules))
	}
	for i, category := range want {
		if rules.Rules[i].Category != category {
			t.Errorf("Rule %d: expected %s, got %s", i, category, rules.Rules[i].Category)
		}
	}
}

func TestLoadRuleSet_EmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRuleSet("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rules.Rules) == 0 || len(rules.NegativeKeywords) == 0 {
		t.Error("Empty path should yield the built-in rule set")
	}
}

func TestLoadRuleSet_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	content := `negative_keywords:
  - "某排除词"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	rules, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(rules.NegativeKeywords) != 1 || rules.NegativeKeywords[0] != "某排除词" {
		t.Errorf("Negative keywords should be overridden, got %v", rules.NegativeKeywords)
	}
	if len(rules.Rules) == 0 {
		t.Error("Category rules should fall back to defaults")
	}
	if len(rules.Aliases) == 0 {
		t.Error("Aliases should fall back to defaults")
	}
}

func TestLoadRuleSet_FullOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	content := `aliases:
  - "别的公司"
rules:
  - category: Prospectus
    display_name: "招股书"
    keywords:
      - "招股"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	rules, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(rules.Rules) != 1 || rules.Rules[0].Category != CategoryProspectus {
		t.Errorf("Rules should be fully replaced, got %v", rules.Rules)
	}
	if rules.Rules[0].DisplayName != "招股书" {
		t.Errorf("Unexpected display name: %s", rules.Rules[0].DisplayName)
	}
}

func TestLoadRuleSet_MissingFile(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "absent.yml"))
	if err == nil {
		t.Error("Expected an error for a missing rules file")
	}
}

func TestLoadRuleSet_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	if _, err := LoadRuleSet(path); err == nil {
		t.Error("Expected an error for a malformed rules file")
	}
}
