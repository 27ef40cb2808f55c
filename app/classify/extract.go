package classify

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Extracted field names.
const (
	FieldShareCount      = "share_count"
	FieldPctOfEquity     = "pct_of_total_equity"
	FieldPrice           = "price"
	FieldDilutionFlag    = "dilution_flag"
	FieldValuationAnchor = "valuation_anchor"
)

// dilutionThresholdPct is the issuance percentage above which the dilution
// warning is attached.
const dilutionThresholdPct = 15.0

var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	shareRe   = regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s*(万|亿)?\s*股`)
	priceRe   = regexp.MustCompile(`(?:HK\$|hk\$)\s*(\d+(?:\.\d+)?)|(\d+(?:\.\d+)?)\s*(?:港元|港币)`)
)

var priceRangeMarkers = []string{"PRICE RANGE", "价格区间", "发售区间"}

type extractor func(text string) (string, bool)

var extractorsByField = map[string]extractor{
	FieldShareCount:      extractShareCount,
	FieldPctOfEquity:     extractPercent,
	FieldPrice:           extractPrice,
	FieldDilutionFlag:    extractDilutionFlag,
	FieldValuationAnchor: extractValuationAnchor,
}

// fieldsByCategory lists which extraction rules apply per category. Categories
// without an entry never carry extracted fields.
var fieldsByCategory = map[Category][]string{
	CategoryShareIssuanceDetail: {FieldShareCount, FieldPctOfEquity, FieldDilutionFlag},
	CategoryGlobalOffering:      {FieldShareCount, FieldPctOfEquity, FieldDilutionFlag},
	CategoryProspectus:          {FieldShareCount, FieldPctOfEquity, FieldDilutionFlag},
	CategoryPriceRange:          {FieldPrice, FieldValuationAnchor},
	CategoryAllocationResults:   {FieldShareCount, FieldPrice},
}

// ExtractFields runs the category's extraction rules over the given text.
// A rule that finds nothing leaves its field absent; extraction never fails.
// The returned map is nil when no field matched.
func (c *Classifier) ExtractFields(category Category, text string) map[string]string {
	fields := fieldsByCategory[category]
	if len(fields) == 0 || text == "" {
		return nil
	}

	// Full-width digits and percent signs are common in Chinese filings.
	normalized := width.Narrow.String(text)

	var extracted map[string]string
	for _, field := range fields {
		value, ok := extractorsByField[field](normalized)
		if !ok {
			continue
		}
		if extracted == nil {
			extracted = make(map[string]string)
		}
		extracted[field] = value
	}

	return extracted
}

func extractPercent(text string) (string, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + "%", true
}

func extractDilutionFlag(text string) (string, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil || pct < dilutionThresholdPct {
		return "", false
	}
	return "稀释风险偏高", true
}

func extractShareCount(text string) (string, bool) {
	m := shareRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + m[2] + "股", true
}

func extractPrice(text string) (string, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return "HK$" + m[1], true
	}
	return m[2] + "港元", true
}

func extractValuationAnchor(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, marker := range priceRangeMarkers {
		if strings.Contains(upper, marker) {
			return "估值锚已出现", true
		}
	}
	return "", false
}
