package filter

import (
	"context"
	"fmt"
	"strings"
)

// The filter control on the live page is an unlabeled custom dropdown; none
// of these selectors are documented anywhere, they encode what has been
// observed to work. Each strategy is independent and tried once, in order.

// containerClassHints mark an ancestor element as a plausible form/filter
// group during the label walk.
var containerClassHints = []string{"form", "filter", "row", "col", "group"}

// selectorPatterns find the clickable opener of the dropdown, relative to a
// container. Ordered from most to least specific.
var selectorPatterns = []string{
	"//*[normalize-space(text())='Select']",
	"//*[contains(text(), 'Select')]",
	"//*[contains(@class, 'select')]",
	"//button[contains(text(), 'Select')]",
	"//*[@role='button' and contains(text(), 'Select')]",
}

// maxAncestorDepth bounds the label walk.
const maxAncestorDepth = 5

func labelXPath(label string) string {
	return fmt.Sprintf("//*[normalize-space(text())='%s' or contains(text(), '%s')]", label, label)
}

func ancestorXPath(label string, depth int) string {
	return fmt.Sprintf("%s/ancestor::*[%d]", labelXPath(label), depth)
}

func followingXPath(label string) string {
	return fmt.Sprintf("//*[normalize-space(text())='%s']/following::*[normalize-space(text())='Select' or contains(text(), 'Select')][1]", label)
}

func genericSelectors(label string) []string {
	lower := strings.ToLower(label)
	return []string{
		fmt.Sprintf("//*[contains(@placeholder, '%s')]", label),
		fmt.Sprintf("//*[contains(@aria-label, '%s')]", label),
		fmt.Sprintf("//select[contains(@name, '%s') or contains(@id, '%s')]", lower, lower),
		fmt.Sprintf("//*[contains(@class, '%s')]//*[contains(text(), 'Select')]", lower),
		"//button[contains(text(), 'Select')]",
	}
}

func optionXPaths(city string) []string {
	return []string{
		fmt.Sprintf("//*[normalize-space(text())='%s']", city),
		fmt.Sprintf("//*[contains(text(), '%s')]", city),
		fmt.Sprintf("//li[contains(text(), '%s')]", city),
		fmt.Sprintf("//*[@role='option' and contains(text(), '%s')]", city),
		fmt.Sprintf("//*[@role='menuitem' and contains(text(), '%s')]", city),
	}
}

const (
	searchTriggerXPath = "//button[contains(text(), 'Search')]"
	resultsXPath       = "//*[self::table or self::tbody]"
)

// locateFunc is one heuristic attempt to find the filter control. It returns
// the XPath of a visible clickable element, or ok=false when the heuristic
// does not apply to the current DOM.
type locateFunc func(ctx context.Context, page Page) (string, bool)

// locateByLabelContainer finds the control label, walks a bounded number of
// ancestors looking for a form/filter-like container, then searches inside
// that container for the dropdown opener.
func (r *Resolver) locateByLabelContainer(ctx context.Context, page Page) (string, bool) {
	label := labelXPath(r.cfg.ControlLabel)
	if !page.Visible(ctx, label) {
		return "", false
	}

	for depth := 1; depth <= maxAncestorDepth; depth++ {
		container := ancestorXPath(r.cfg.ControlLabel, depth)
		class, ok := page.Attr(ctx, container, "class")
		if !ok || !classSuggestsContainer(class) {
			continue
		}
		for _, pattern := range selectorPatterns {
			candidate := container + pattern
			if page.Visible(ctx, candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// locateByDocumentOrder searches the whole document for an opener positioned
// after the label in document order.
func (r *Resolver) locateByDocumentOrder(ctx context.Context, page Page) (string, bool) {
	candidate := followingXPath(r.cfg.ControlLabel)
	if page.Visible(ctx, candidate) {
		return candidate, true
	}
	return "", false
}

// locateByGenericSelectors is the last resort: a flat list of attribute-based
// selectors with no positional reasoning at all.
func (r *Resolver) locateByGenericSelectors(ctx context.Context, page Page) (string, bool) {
	for _, candidate := range genericSelectors(r.cfg.ControlLabel) {
		if page.Visible(ctx, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func classSuggestsContainer(class string) bool {
	lower := strings.ToLower(class)
	for _, hint := range containerClassHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
