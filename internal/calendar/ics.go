package calendar

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	icsTimeLayout = "20060102T150405Z"
	icsLineOctets = 75
)

var icsEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\r\n", "\\n",
	"\n", "\\n",
	"\r", "\\n",
)

// ICS renders the view as an iCalendar document with one VEVENT per event.
// now is used for DTSTAMP.
func (v *View) ICS(now time.Time) string {
	stamp := now.UTC().Format(icsTimeLayout)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//notecal//Task Schedule//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	for _, e := range v.events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(e.ID+"@notecal"),
			"DTSTAMP:"+stamp,
			"DTSTART:"+e.Start.UTC().Format(icsTimeLayout),
			"DTEND:"+e.End.UTC().Format(icsTimeLayout),
			"SUMMARY:"+escapeICSText(e.Title),
		)
		if e.Task != "" && e.Task != e.Title {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(e.Task))
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		writeFolded(&b, line)
	}
	return b.String()
}

// writeFolded writes line followed by CRLF, folding it so that no physical
// line exceeds 75 octets. Continuation lines start with a single space and
// multi-byte characters are never split.
func writeFolded(b *strings.Builder, line string) {
	limit := icsLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = icsLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func escapeICSText(s string) string {
	return icsEscaper.Replace(s)
}
