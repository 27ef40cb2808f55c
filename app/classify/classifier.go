package classify

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/yonwatch/hklisting/app/record"
)

// Classification is the verdict for a single record. It is derived data,
// never persisted on its own.
type Classification struct {
	IsRelevant    bool
	Category      Category
	CategoryLabel string
	Severity      Severity

	// Extracted holds category-specific fields pulled out of the text.
	// Absent fields are simply not present, never empty placeholders.
	Extracted map[string]string
}

// Classifier decides relevance, category and severity for records.
//
// Classify is pure: no network, no store access, identical input always
// yields an identical verdict.
type Classifier struct {
	rules RuleSet
	fold  cases.Caser

	// entityScoped marks sources whose queries are already restricted to
	// the tracked entity, so their titles need no alias match.
	entityScoped map[record.Source]bool
}

func NewClassifier(rules RuleSet, entityScoped map[record.Source]bool) *Classifier {
	if entityScoped == nil {
		entityScoped = map[record.Source]bool{}
	}
	return &Classifier{
		rules:        rules,
		fold:         cases.Fold(),
		entityScoped: entityScoped,
	}
}

// Classify matches the record title against the rule set, in order:
// entity association, negative keywords, then the category rules with
// first match winning.
func (c *Classifier) Classify(rec record.Record) Classification {
	verdict := Classification{Category: CategoryOther, Severity: SeverityLow}

	title := c.fold.String(rec.Title)

	if !c.entityScoped[rec.Source] && !c.matchesAny(title, c.rules.Aliases) {
		return verdict
	}

	if c.matchesAny(title, c.rules.NegativeKeywords) {
		return verdict
	}

	for _, rule := range c.rules.Rules {
		if !c.matchesAny(title, rule.Keywords) {
			continue
		}

		verdict.IsRelevant = true
		verdict.Category = rule.Category
		verdict.CategoryLabel = rule.DisplayName
		verdict.Severity = SeverityFor(rule.Category)
		verdict.Extracted = c.ExtractFields(rule.Category, titleAndContent(rec))
		return verdict
	}

	return verdict
}

func (c *Classifier) matchesAny(folded string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(folded, c.fold.String(keyword)) {
			return true
		}
	}
	return false
}

func titleAndContent(rec record.Record) string {
	if rec.Content == "" {
		return rec.Title
	}
	return rec.Title + "\n" + rec.Content
}
