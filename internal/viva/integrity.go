package viva

import (
	"fmt"
	"strings"
	"sync"
)

// Category is the violation bucket a signal maps to.
type Category string

const (
	CategoryTab      Category = "tab"
	CategoryWindow   Category = "window"
	CategoryAI       Category = "ai"
	CategoryDevTools Category = "devtools"
)

// SignalKind identifies a raw client-side event reported over the stream.
type SignalKind string

const (
	SignalVisibilityHidden SignalKind = "visibility_hidden"
	SignalWindowBlur       SignalKind = "window_blur"
	SignalDevToolsKey      SignalKind = "devtools_key"
	SignalAltTab           SignalKind = "alt_tab"
	SignalClipboard        SignalKind = "clipboard"
	SignalContextMenu      SignalKind = "context_menu"
	SignalPointerLeave     SignalKind = "pointer_leave"
	SignalPageScan         SignalKind = "page_scan"
	SignalResourceSample   SignalKind = "resource_sample"
)

// PageScan carries the client's periodic self-inspection payload.
type PageScan struct {
	URL         string `json:"url"`
	Referrer    string `json:"referrer"`
	Title       string `json:"title"`
	VisibleText string `json:"visible_text"`
}

// ResourceSample carries the client's periodic performance readings.
type ResourceSample struct {
	HeapBytes    int64   `json:"heap_bytes"`
	DownlinkMbps float64 `json:"downlink_mbps"`
}

// Signal is one raw event from the client. Page and Resource are only set
// for the corresponding kinds.
type Signal struct {
	Kind     SignalKind      `json:"kind"`
	Page     *PageScan       `json:"page,omitempty"`
	Resource *ResourceSample `json:"resource,omitempty"`
}

// Effect is what the policy decided for an observed violation.
type Effect int

const (
	// EffectNone: signal carried no violation, or session no longer accepts them.
	EffectNone Effect = iota
	// EffectWarning: first strike, show the final warning.
	EffectWarning
	// EffectTerminated: second strike, the caller must force-submit with score 0.
	EffectTerminated
)

// Outcome is the monitor's decision for one signal.
type Outcome struct {
	Effect   Effect
	Category Category
	Message  string
	// TerminationReason is set only with EffectTerminated.
	TerminationReason string
}

// FinalWarningBanner composes the text shown on the first strike, naming
// the violation that triggered it.
func FinalWarningBanner(message string) string {
	return "FINAL WARNING: " + message + " - One more violation will auto-submit your test with 0 marks!"
}

// WarningDisplaySeconds is how long the client keeps the warning on screen.
const WarningDisplaySeconds = 5

const (
	// heapThresholdBytes flags memory pressure consistent with a heavyweight
	// assistant running next to the test page.
	heapThresholdBytes = int64(100) << 20
	// downlinkFloorMbps flags bandwidth starvation from parallel applications.
	downlinkFloorMbps = 1.0
)

// suspiciousFragments is matched against page URL, referrer and title.
// Covers AI assistants, search, Q&A and code-sharing sites, collaboration
// apps and remote-desktop tools.
var suspiciousFragments = []string{
	"chatgpt", "claude", "bard", "copilot", "gemini", "perplexity",
	"openai", "anthropic",
	"google.com/search", "bing.com/search",
	"stackoverflow", "github.com", "codepen", "jsfiddle", "replit", "codesandbox",
	"notion", "obsidian", "roam",
	"whatsapp", "telegram", "discord", "slack", "teams", "zoom", "meet", "skype",
	"anydesk", "teamviewer",
}

// aiIndicators is matched against the visible page text, catching embedded
// assistant widgets that never change the URL.
var aiIndicators = []string{"chatgpt", "claude", "bard", "copilot", "ai assistant"}

// ViolationRecord is handed to the audit sink for every violation observed,
// regardless of the policy effect.
type ViolationRecord struct {
	Category Category
	Message  string
}

// Monitor classifies raw signals into violations and applies the two-strike
// policy against its session. Safe for concurrent use.
type Monitor struct {
	session *Session

	mu        sync.Mutex
	seenTools map[string]bool

	audit func(ViolationRecord)
}

// NewMonitor builds a monitor over the session. audit may be nil.
func NewMonitor(session *Session, audit func(ViolationRecord)) *Monitor {
	return &Monitor{
		session:   session,
		seenTools: make(map[string]bool),
		audit:     audit,
	}
}

// Observe classifies one signal. A signal that carries no violation yields
// EffectNone. Otherwise the violation is counted on the session and the
// two-strike policy applied: first strike warns, any further strike
// terminates. The caller performs the actual termination.
func (m *Monitor) Observe(sig Signal) Outcome {
	cat, msg, ok := m.classify(sig)
	if !ok {
		return Outcome{Effect: EffectNone}
	}
	return m.apply(cat, msg)
}

func (m *Monitor) apply(cat Category, msg string) Outcome {
	total, ok := m.session.RecordViolation(cat)
	if !ok {
		return Outcome{Effect: EffectNone}
	}
	if m.audit != nil {
		m.audit(ViolationRecord{Category: cat, Message: msg})
	}
	if total >= 2 {
		return Outcome{
			Effect:            EffectTerminated,
			Category:          cat,
			Message:           msg,
			TerminationReason: "Multiple security violations detected: " + msg,
		}
	}
	return Outcome{Effect: EffectWarning, Category: cat, Message: msg}
}

// classify maps a raw signal to a violation category and message. ok is
// false for benign signals (clean page scans, in-range resource samples,
// unknown kinds).
func (m *Monitor) classify(sig Signal) (Category, string, bool) {
	switch sig.Kind {
	case SignalVisibilityHidden:
		return CategoryTab, "Tab switching detected! Stay on the test page.", true
	case SignalWindowBlur:
		return CategoryWindow, "Window switching detected! Focus must remain on test window.", true
	case SignalDevToolsKey:
		return CategoryDevTools, "Developer tools access attempt detected!", true
	case SignalAltTab:
		return CategoryWindow, "Alt+Tab window switching detected!", true
	case SignalClipboard:
		return CategoryDevTools, "Copy/Paste operation blocked during test!", true
	case SignalContextMenu:
		return CategoryDevTools, "Right-click context menu blocked during test!", true
	case SignalPointerLeave:
		return CategoryWindow, "Mouse left test window area!", true
	case SignalPageScan:
		if sig.Page == nil {
			return "", "", false
		}
		return m.classifyPage(sig.Page)
	case SignalResourceSample:
		if sig.Resource == nil {
			return "", "", false
		}
		return classifyResource(sig.Resource)
	}
	return "", "", false
}

func (m *Monitor) classifyPage(p *PageScan) (Category, string, bool) {
	haystack := strings.ToLower(p.URL + " " + p.Referrer + " " + p.Title)
	for _, frag := range suspiciousFragments {
		if strings.Contains(haystack, frag) {
			if !m.firstSighting(frag) {
				return "", "", false
			}
			return CategoryAI, fmt.Sprintf("Suspicious tool detected: %s", frag), true
		}
	}
	text := strings.ToLower(p.Title + " " + p.VisibleText)
	for _, ind := range aiIndicators {
		if strings.Contains(text, ind) {
			if !m.firstSighting(ind) {
				return "", "", false
			}
			return CategoryAI, fmt.Sprintf("Suspicious tool detected: %s", ind), true
		}
	}
	return "", "", false
}

// firstSighting records a detected tool on the session once per distinct
// name and reports whether this scan is the first to carry it. Repeat
// sightings are not new violations: page scans run every few seconds, and a
// lingering fragment such as a stale referrer must not spend both strikes
// by itself.
func (m *Monitor) firstSighting(tool string) bool {
	m.mu.Lock()
	seen := m.seenTools[tool]
	if !seen {
		m.seenTools[tool] = true
	}
	m.mu.Unlock()
	if !seen {
		m.session.NoteAITool(tool)
	}
	return !seen
}

func classifyResource(r *ResourceSample) (Category, string, bool) {
	if r.HeapBytes > heapThresholdBytes {
		return CategoryAI, "High memory usage detected - possible AI tool running", true
	}
	if r.DownlinkMbps > 0 && r.DownlinkMbps < downlinkFloorMbps {
		return CategoryAI, "Low bandwidth detected - possible multiple applications", true
	}
	return "", "", false
}
