package history

import "strings"

const DefaultCategory = "General"

// Categories is the fixed set of question categories, in display order.
var Categories = []string{"General", "Organic", "Inorganic", "Analytical", "Physical", "Biochemistry"}

// NormalizeCategory maps s case-insensitively onto Categories. Unknown or
// empty input becomes DefaultCategory.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(c, s) {
			return c
		}
	}
	return DefaultCategory
}
