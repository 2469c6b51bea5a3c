package render

import (
	"strings"
	"time"
)

// DateLayout is the form every date field is printed in.
const DateLayout = "01/02/2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// FormatDate renders a date value as MM/DD/YYYY. Values in no known layout
// are returned unchanged.
func FormatDate(value string) string {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(DateLayout)
		}
	}
	return value
}
