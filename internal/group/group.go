// Package group defines Task Groups: the tasks and deadline extracted from
// one uploaded note, and the parsing contract for upstream records.
package group

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/javiermolinar/notecal/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyID         = errors.New("group id cannot be empty")
	ErrInvalidDeadline = errors.New("invalid deadline")
)

// titleWords is the number of meaningful words kept in a display title.
const titleWords = 2

var ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)

// Record is one item as returned by the upstream analysis layer.
// Topics holds the newline-delimited, optionally numbered task lines.
type Record struct {
	ID       string `toml:"id" yaml:"id" json:"id"`
	Name     string `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Deadline string `toml:"deadline,omitempty" yaml:"deadline,omitempty" json:"deadline,omitempty"`
	Topics   string `toml:"topics,omitempty" yaml:"topics,omitempty" json:"topics,omitempty"`
}

// Group is the set of ordered tasks and the deadline for one item.
type Group struct {
	ID       string
	Name     string
	Deadline *time.Time // nil means unscheduled
	Tasks    []string   // order defines packing priority
}

// FromRecord parses an upstream record into a Group.
// An empty deadline yields a Group with a nil Deadline. A deadline that cannot
// be parsed returns ErrInvalidDeadline; callers treat such groups as ineligible.
func FromRecord(r Record, loc *time.Location) (Group, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return Group{}, ErrEmptyID
	}

	g := Group{
		ID:    id,
		Name:  strings.TrimSpace(r.Name),
		Tasks: ParseTasks(r.Topics),
	}

	deadline, ok, err := dateutil.ParseDeadline(r.Deadline, loc)
	if err != nil {
		return g, fmt.Errorf("%w for %s: %q", ErrInvalidDeadline, id, r.Deadline)
	}
	if ok {
		g.Deadline = &deadline
	}

	return g, nil
}

// Eligible returns true if the group can produce events: it needs a
// deadline and at least one task.
func (g Group) Eligible() bool {
	return g.Deadline != nil && len(g.Tasks) > 0
}

// ParseTasks splits a newline-delimited task list, strips ordinal numbering
// and drops lines that are empty once stripped. Order is preserved.
func ParseTasks(topics string) []string {
	lines := strings.Split(topics, "\n")
	tasks := make([]string, 0, len(lines))
	for _, line := range lines {
		task := StripOrdinal(line)
		if task == "" {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// StripOrdinal removes a leading "<digits>. " prefix and surrounding whitespace.
func StripOrdinal(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(ordinalPrefix.ReplaceAllString(s, ""))
}

// TruncateTitle shortens a task to a calendar display title.
//
// The ordinal prefix is stripped, then the first two words longer than one
// character are kept and "..." is appended. When there are no more than two
// such words the cleaned text is returned unchanged.
func TruncateTitle(s string) string {
	clean := StripOrdinal(s)

	words := make([]string, 0, titleWords+1)
	for _, w := range strings.Fields(clean) {
		if utf8.RuneCountInString(w) > 1 {
			words = append(words, w)
		}
	}

	if len(words) <= titleWords {
		return clean
	}
	return strings.Join(words[:titleWords], " ") + "..."
}
