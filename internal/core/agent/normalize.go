package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	canonicalTimeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
	clockRe         = regexp.MustCompile(`(\d{1,2}):?(\d{2})?`)
)

// Layouts tried when the caller hands us a spelled-out date
var looseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
	"01/02/2006",
}

// NormalizeDate converts a free-form date expression into YYYY-MM-DD.
// Unparseable input falls back to tomorrow rather than failing: callers
// always get a usable date.
func NormalizeDate(input string) string {
	return normalizeDateAt(input, time.Now())
}

func normalizeDateAt(input string, now time.Time) string {
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)
	lower := strings.ToLower(input)

	// Prompt template leftovers mean the model echoed our "tomorrow" helper
	if strings.Contains(input, "${getTomorrowDate()}") {
		return tomorrow
	}

	if strings.Contains(lower, "mañana") || strings.Contains(lower, "tomorrow") {
		return tomorrow
	}

	if strings.Contains(lower, "hoy") || strings.Contains(lower, "today") {
		return now.Format(dateLayout)
	}

	if canonicalDateRe.MatchString(input) {
		return input
	}

	trimmed := strings.TrimSpace(input)
	for _, layout := range looseDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(dateLayout)
		}
	}

	return tomorrow
}

// NormalizeTime converts a free-form time expression into 24h HH:MM.
// It never fails; input without any clock pattern defaults to 20:00.
func NormalizeTime(input string) string {
	if canonicalTimeRe.MatchString(input) {
		return input
	}

	match := clockRe.FindStringSubmatch(input)
	if match == nil {
		return "20:00"
	}

	hours, _ := strconv.Atoi(match[1])
	minutes := 0
	if match[2] != "" {
		minutes, _ = strconv.Atoi(match[2])
	}

	lower := strings.ToLower(input)
	if strings.Contains(lower, "pm") && hours < 12 {
		hours += 12
	}
	if strings.Contains(lower, "am") && hours == 12 {
		hours = 0
	}

	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

var spanishWeekdays = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatSpanishDate renders a canonical date as "viernes 14 de marzo" for
// the confirmation message. Non-canonical input comes back unchanged.
func FormatSpanishDate(date string) string {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d de %s",
		spanishWeekdays[parsed.Weekday()],
		parsed.Day(),
		spanishMonths[parsed.Month()-1],
	)
}
