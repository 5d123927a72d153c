package alert

import (
	"strings"

	"github.com/fa-friend/fa/pkg/model"
)

var (
	criticalNewsKeywords = []string{
		"แผ่นดินไหว", "สึนามิ", "tsunami", "earthquake",
		"ระเบิด", "ไฟไหม้ใหญ่", "น้ำท่วมหนัก", "สงคราม",
	}
	warningNewsKeywords = []string{
		"พายุ", "น้ำท่วม", "ดินถล่ม", "เตือนภัย",
		"อุทกภัย", "วาตภัย", "ฝนหนัก", "ภัยแล้ง",
	}
)

// ClassifyEarthquake maps magnitude and proximity to a severity tier
func ClassifyEarthquake(magnitude float64, nearThailand bool) model.Severity {
	switch {
	case magnitude >= 7.0:
		return model.SeverityCritical
	case magnitude >= 6.0, nearThailand && magnitude >= 5.0:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// ClassifyNews looks for critical keywords first, then warning keywords,
// in the lower-cased title and summary.
func ClassifyNews(title, summary string) model.Severity {
	text := strings.ToLower(title + " " + summary)
	for _, kw := range criticalNewsKeywords {
		if strings.Contains(text, kw) {
			return model.SeverityCritical
		}
	}
	for _, kw := range warningNewsKeywords {
		if strings.Contains(text, kw) {
			return model.SeverityWarning
		}
	}
	return model.SeverityInfo
}
