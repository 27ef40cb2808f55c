package notify

import (
	"fmt"
	"strings"

	"github.com/yonwatch/hklisting/app/classify"
	"github.com/yonwatch/hklisting/app/record"
)

// fieldOrder fixes the rendering order of extracted fields so the same
// classification always produces the same message.
var fieldOrder = []string{
	classify.FieldShareCount,
	classify.FieldPctOfEquity,
	classify.FieldPrice,
	classify.FieldDilutionFlag,
	classify.FieldValuationAnchor,
}

var fieldLabels = map[string]string{
	classify.FieldShareCount:  "发行数量",
	classify.FieldPctOfEquity: "占总股本",
	classify.FieldPrice:       "价格",
}

// Format renders the alert message for one classified record. The output is
// deterministic given the same record and classification.
func Format(header string, rec record.Record, cls classify.Classification) string {
	label := cls.CategoryLabel
	if label == "" {
		label = string(cls.Category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", header)
	fmt.Fprintf(&b, "事件：%s\n", label)
	fmt.Fprintf(&b, "日期：%s\n", rec.PublishedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "来源：%s\n", rec.Source)
	fmt.Fprintf(&b, "链接：%s\n", rec.Link)
	fmt.Fprintf(&b, "重要性：%s", cls.Severity)

	if len(cls.Extracted) > 0 {
		b.WriteString("\n\n附加信息：")
		for _, field := range fieldOrder {
			value, ok := cls.Extracted[field]
			if !ok {
				continue
			}
			if label, labeled := fieldLabels[field]; labeled {
				fmt.Fprintf(&b, "\n  • %s：%s", label, value)
			} else {
				fmt.Fprintf(&b, "\n  • %s", value)
			}
		}
	}

	return b.String()
}
