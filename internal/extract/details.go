package extract

import "strings"

// Details is the structured form of a tender's free-text details cell.
type Details struct {
	Title           string
	Category        string
	DepartmentOwner string
}

// Heuristic tables for the details cell. The page renders the cell as a few
// stacked lines of free text with no stable labels, so parsing is keyword
// driven; new observed layouts get new table entries, not new control flow.
var (
	categoryKeyword = "category"

	departmentKeywords = []string{"department", "dept", "owner", "organization", "org"}

	// Labelled forms, preferred over bare separator splits.
	departmentLabels = []string{"department:", "dept:", "owner:", "organization:", "org:"}
)

// ParseDetails turns the raw details-cell text into title, category and
// department/owner. It is a pure function of the text: lines are trimmed,
// blank lines dropped, and the heuristics below applied in order.
//
// Title is the first non-blank line. Category comes from the first line
// mentioning "category" (split on ":" when present, else "-", else the
// keyword itself is stripped). Department/owner comes from the first line
// mentioning a department keyword together with a "keyword:" label or a "-"
// separator; keyword lines lacking both are skipped. When no line yields a
// value, positional fallbacks fill the fields from the second and third
// lines.
func ParseDetails(text string) Details {
	var d Details

	if text == "" {
		return d
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return d
	}

	d.Title = lines[0]
	d.Category = findCategory(lines)
	d.DepartmentOwner = findDepartment(lines)

	// Positional fallbacks when no keyword line matched.
	if d.Category == "" && len(lines) > 1 {
		for i := 1; i < len(lines) && i < 3; i++ {
			if lines[i] != "" {
				d.Category = lines[i]
				break
			}
		}
	}
	if d.DepartmentOwner == "" && len(lines) > 2 {
		for i := 2; i < len(lines); i++ {
			if lines[i] != "" {
				d.DepartmentOwner = lines[i]
				break
			}
		}
	}

	return d
}

func findCategory(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), categoryKeyword) {
			continue
		}
		if strings.Contains(line, ":") {
			return trailingSegment(line, ":")
		}
		if strings.Contains(line, "-") {
			return trailingSegment(line, "-")
		}
		// Keyword with no separator at all: what remains after the keyword
		// is the value.
		stripped := strings.ReplaceAll(line, "Category", "")
		stripped = strings.ReplaceAll(stripped, "category", "")
		return strings.TrimSpace(stripped)
	}
	return ""
}

func findDepartment(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)

		matched := false
		for _, kw := range departmentKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		for _, label := range departmentLabels {
			if strings.Contains(lower, label) {
				return trailingSegment(line, ":")
			}
		}
		if strings.Contains(line, "-") {
			return trailingSegment(line, "-")
		}
		// Keyword inside ordinary prose, e.g. "org" in "Reorganization".
		// Keep scanning; a labelled line may follow.
	}
	return ""
}

// trailingSegment splits line on the first sep and returns the trimmed
// remainder.
func trailingSegment(line, sep string) string {
	_, rest, found := strings.Cut(line, sep)
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
