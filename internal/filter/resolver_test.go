package filter

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakePage is an in-memory DOM stand-in keyed by the exact XPath queries the
// resolver generates.
type fakePage struct {
	visible map[string]bool
	attrs   map[string]string // query -> class attribute
	clicks  []string
	typed   []string
	// reveal marks queries as visible once SendKeys has been called,
	// emulating a searchable dropdown.
	reveal []string
	// clickErr makes Click fail for a specific query.
	clickErr map[string]error
	// waits records the timeout passed to each WaitVisible call.
	waits []time.Duration
}

func newFakePage() *fakePage {
	return &fakePage{
		visible:  make(map[string]bool),
		attrs:    make(map[string]string),
		clickErr: make(map[string]error),
	}
}

func (p *fakePage) Visible(_ context.Context, query string) bool { return p.visible[query] }

func (p *fakePage) Attr(_ context.Context, query, name string) (string, bool) {
	if name != "class" {
		return "", false
	}
	v, ok := p.attrs[query]
	return v, ok
}

func (p *fakePage) ScrollIntoView(_ context.Context, query string) error { return nil }

func (p *fakePage) Click(_ context.Context, query string) error {
	if err := p.clickErr[query]; err != nil {
		return err
	}
	p.clicks = append(p.clicks, query)
	return nil
}

func (p *fakePage) SendKeys(_ context.Context, query, keys string) error {
	p.typed = append(p.typed, keys)
	for _, q := range p.reveal {
		p.visible[q] = true
	}
	return nil
}

func (p *fakePage) WaitVisible(_ context.Context, query string, timeout time.Duration) error {
	p.waits = append(p.waits, timeout)
	if p.visible[query] {
		return nil
	}
	return context.DeadlineExceeded
}

func fastResolver() *Resolver {
	return New(Config{
		ControlLabel: "City",
		Timeout:      10 * time.Millisecond,
		SettleDelay:  time.Nanosecond,
		OpenDelay:    time.Nanosecond,
	})
}

// wireHappyPath marks the option, search trigger and results table visible so
// Apply can run to completion once a control is located.
func wireHappyPath(p *fakePage, city string) {
	p.visible[optionXPaths(city)[0]] = true
	p.visible[searchTriggerXPath] = true
	p.visible[resultsXPath] = true
}

func TestApply_LabelContainerStrategy(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	page.attrs[ancestorXPath("City", 2)] = "filter-row col-md-3"
	control := ancestorXPath("City", 2) + selectorPatterns[0]
	page.visible[control] = true
	wireHappyPath(page, "Chakwal")

	if !fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Fatal("Apply() = false, want true")
	}

	if len(page.clicks) == 0 || page.clicks[0] != control {
		t.Errorf("first click = %v, want the container-strategy control", page.clicks)
	}
}

func TestApply_AncestorWalkIsBounded(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	// A suitable container exists but above the walk bound: strategy 1 must
	// not find it, and the document-order fallback takes over.
	page.attrs[ancestorXPath("City", maxAncestorDepth+1)] = "form-group"
	page.visible[followingXPath("City")] = true
	wireHappyPath(page, "Lahore")

	if !fastResolver().Apply(context.Background(), page, "Lahore") {
		t.Fatal("Apply() = false, want true via document-order fallback")
	}
	if page.clicks[0] != followingXPath("City") {
		t.Errorf("clicked %q, want document-order candidate", page.clicks[0])
	}
}

func TestApply_FallsBackToDocumentOrder(t *testing.T) {
	page := newFakePage()
	// Label exists but no ancestor looks like a form group.
	page.visible[labelXPath("City")] = true
	page.visible[followingXPath("City")] = true
	wireHappyPath(page, "Chakwal")

	if !fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Fatal("Apply() = false, want true")
	}
	if page.clicks[0] != followingXPath("City") {
		t.Errorf("clicked %q, want document-order candidate", page.clicks[0])
	}
}

func TestApply_FallsBackToGenericSelectors(t *testing.T) {
	page := newFakePage()
	// No label anywhere: only the flat generic selectors can match.
	generic := genericSelectors("City")[1] // aria-label variant
	page.visible[generic] = true
	wireHappyPath(page, "Chakwal")

	if !fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Fatal("Apply() = false, want true")
	}
	if page.clicks[0] != generic {
		t.Errorf("clicked %q, want generic candidate", page.clicks[0])
	}
}

func TestApply_NoControlFound(t *testing.T) {
	page := newFakePage()

	if fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Error("Apply() = true, want false when every strategy fails")
	}
	if len(page.clicks) != 0 {
		t.Errorf("clicks = %v, want none", page.clicks)
	}
}

func TestApply_OptionNotFoundReturnsFalse(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	page.visible[followingXPath("City")] = true
	// Dropdown opens but never shows the city, even after type-ahead.

	if fastResolver().Apply(context.Background(), page, "Atlantis") {
		t.Error("Apply() = true, want false when the option never appears")
	}
	if len(page.typed) == 0 {
		t.Error("type-ahead fallback was never attempted")
	}
}

func TestApply_OptionSearchSharesOneTimeoutBudget(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	page.visible[followingXPath("City")] = true
	// No option ever appears: every pattern runs its wait to exhaustion.

	r := fastResolver()
	if r.Apply(context.Background(), page, "Atlantis") {
		t.Fatal("Apply() = true, want false")
	}

	var total time.Duration
	for _, w := range page.waits {
		total += w
	}
	if total > r.cfg.Timeout {
		t.Errorf("option waits total %v, want at most the configured timeout %v", total, r.cfg.Timeout)
	}
}

func TestApply_TypeAheadRevealsOption(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	control := followingXPath("City")
	page.visible[control] = true
	page.visible[searchTriggerXPath] = true
	page.visible[resultsXPath] = true
	// Option appears only after typing into the control.
	page.reveal = []string{optionXPaths("Chakwal")[1]}

	if !fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Fatal("Apply() = false, want true via type-ahead")
	}
	if len(page.typed) != 1 || page.typed[0] != "Chakwal" {
		t.Errorf("typed = %v, want the city name", page.typed)
	}
}

func TestApply_SearchTriggerMissingReturnsFalse(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	page.visible[followingXPath("City")] = true
	page.visible[optionXPaths("Chakwal")[0]] = true
	// No search trigger, no results container.

	if fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Error("Apply() = true, want false when the search trigger times out")
	}
}

func TestApply_ClickFailureIsNonFatal(t *testing.T) {
	page := newFakePage()
	page.visible[labelXPath("City")] = true
	control := followingXPath("City")
	page.visible[control] = true
	page.clickErr[control] = errors.New("element not interactable")

	if fastResolver().Apply(context.Background(), page, "Chakwal") {
		t.Error("Apply() = true, want false when the control cannot be clicked")
	}
}
