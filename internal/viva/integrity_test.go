package viva

import (
	"strings"
	"testing"
)

func monitored(t *testing.T) (*Session, *Monitor, *[]ViolationRecord) {
	t.Helper()
	s := startedSession(t, 5)
	var audit []ViolationRecord
	m := NewMonitor(s, func(rec ViolationRecord) { audit = append(audit, rec) })
	return s, m, &audit
}

func TestClassifyDirectSignals(t *testing.T) {
	tests := []struct {
		kind    SignalKind
		cat     Category
		message string
	}{
		{SignalVisibilityHidden, CategoryTab, "Tab switching detected! Stay on the test page."},
		{SignalWindowBlur, CategoryWindow, "Window switching detected! Focus must remain on test window."},
		{SignalDevToolsKey, CategoryDevTools, "Developer tools access attempt detected!"},
		{SignalAltTab, CategoryWindow, "Alt+Tab window switching detected!"},
		{SignalClipboard, CategoryDevTools, "Copy/Paste operation blocked during test!"},
		{SignalContextMenu, CategoryDevTools, "Right-click context menu blocked during test!"},
		{SignalPointerLeave, CategoryWindow, "Mouse left test window area!"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, m, _ := monitored(t)
			cat, msg, ok := m.classify(Signal{Kind: tt.kind})
			if !ok {
				t.Fatal("signal should classify as a violation")
			}
			if cat != tt.cat {
				t.Fatalf("category = %s, want %s", cat, tt.cat)
			}
			if msg != tt.message {
				t.Fatalf("message = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestPageScanSuspiciousURL(t *testing.T) {
	s, m, _ := monitored(t)
	out := m.Observe(Signal{
		Kind: SignalPageScan,
		Page: &PageScan{URL: "https://chat.openai.com/c/abc", Title: "New chat"},
	})
	if out.Effect != EffectWarning || out.Category != CategoryAI {
		t.Fatalf("outcome = %+v", out)
	}
	if !strings.HasPrefix(out.Message, "Suspicious tool detected: ") {
		t.Fatalf("message = %q", out.Message)
	}
	if tools := s.AIToolsDetected(); len(tools) != 1 || tools[0] != "openai" {
		t.Fatalf("tools = %v", tools)
	}
}

func TestPageScanAIIndicatorInText(t *testing.T) {
	s, m, _ := monitored(t)
	out := m.Observe(Signal{
		Kind: SignalPageScan,
		Page: &PageScan{URL: "https://lab.example.edu/viva", VisibleText: "Ask your AI Assistant anything"},
	})
	if out.Effect != EffectWarning || out.Category != CategoryAI {
		t.Fatalf("outcome = %+v", out)
	}
	if tools := s.AIToolsDetected(); len(tools) != 1 || tools[0] != "ai assistant" {
		t.Fatalf("tools = %v", tools)
	}
}

func TestPageScanCleanPage(t *testing.T) {
	_, m, audit := monitored(t)
	out := m.Observe(Signal{
		Kind: SignalPageScan,
		Page: &PageScan{URL: "https://lab.example.edu/viva", Title: "Viva Test"},
	})
	if out.Effect != EffectNone {
		t.Fatalf("clean scan produced %+v", out)
	}
	if len(*audit) != 0 {
		t.Fatal("clean scan must not reach the audit sink")
	}
}

func TestToolDedupe(t *testing.T) {
	s, m, audit := monitored(t)
	scan := Signal{Kind: SignalPageScan, Page: &PageScan{Referrer: "https://github.com/some/repo"}}
	if out := m.Observe(scan); out.Effect != EffectWarning {
		t.Fatalf("first sighting = %+v", out)
	}
	// The same lingering fragment on a later scan is not a new violation.
	if out := m.Observe(scan); out.Effect != EffectNone {
		t.Fatalf("repeat sighting = %+v", out)
	}
	if tools := s.AIToolsDetected(); len(tools) != 1 {
		t.Fatalf("tools = %v, want single deduped entry", tools)
	}
	if v := s.Violations(); v.AIToolDetections != 1 {
		t.Fatalf("detections = %d, want 1", v.AIToolDetections)
	}
	if len(*audit) != 1 {
		t.Fatalf("audit records = %d, want 1", len(*audit))
	}
	// A distinct tool is its own violation and lands the second strike.
	out := m.Observe(Signal{Kind: SignalPageScan, Page: &PageScan{URL: "https://chatgpt.com/c/1"}})
	if out.Effect != EffectTerminated {
		t.Fatalf("distinct tool = %+v", out)
	}
}

func TestResourceSampleThresholds(t *testing.T) {
	tests := []struct {
		name    string
		sample  ResourceSample
		effect  Effect
		message string
	}{
		{"high heap", ResourceSample{HeapBytes: 150 << 20}, EffectWarning, "High memory usage detected - possible AI tool running"},
		{"at threshold", ResourceSample{HeapBytes: 100 << 20}, EffectNone, ""},
		{"low downlink", ResourceSample{DownlinkMbps: 0.5}, EffectWarning, "Low bandwidth detected - possible multiple applications"},
		{"zero downlink ignored", ResourceSample{DownlinkMbps: 0}, EffectNone, ""},
		{"healthy", ResourceSample{HeapBytes: 10 << 20, DownlinkMbps: 12}, EffectNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, _ := monitored(t)
			out := m.Observe(Signal{Kind: SignalResourceSample, Resource: &tt.sample})
			if out.Effect != tt.effect {
				t.Fatalf("effect = %v, want %v", out.Effect, tt.effect)
			}
			if tt.message != "" && out.Message != tt.message {
				t.Fatalf("message = %q, want %q", out.Message, tt.message)
			}
		})
	}
}

func TestTwoStrikePolicy(t *testing.T) {
	_, m, audit := monitored(t)

	first := m.Observe(Signal{Kind: SignalVisibilityHidden})
	if first.Effect != EffectWarning {
		t.Fatalf("first strike effect = %v, want warning", first.Effect)
	}

	second := m.Observe(Signal{Kind: SignalDevToolsKey})
	if second.Effect != EffectTerminated {
		t.Fatalf("second strike effect = %v, want terminated", second.Effect)
	}
	want := "Multiple security violations detected: Developer tools access attempt detected!"
	if second.TerminationReason != want {
		t.Fatalf("reason = %q, want %q", second.TerminationReason, want)
	}
	if len(*audit) != 2 {
		t.Fatalf("audit records = %d, want 2", len(*audit))
	}
}

func TestStrikesCountAcrossCategories(t *testing.T) {
	s, m, _ := monitored(t)
	m.Observe(Signal{Kind: SignalVisibilityHidden})
	out := m.Observe(Signal{Kind: SignalPointerLeave})
	if out.Effect != EffectTerminated {
		t.Fatalf("effect = %v, total is across categories", out.Effect)
	}
	v := s.Violations()
	if v.TabSwitches != 1 || v.WindowSwitches != 1 {
		t.Fatalf("counters = %+v", v)
	}
}

func TestObserveAfterClaimIsInert(t *testing.T) {
	s, m, audit := monitored(t)
	if err := s.claim(ReasonTimeExpired, false, false); err != nil {
		t.Fatal(err)
	}
	out := m.Observe(Signal{Kind: SignalVisibilityHidden})
	if out.Effect != EffectNone {
		t.Fatalf("effect = %v after claim, want none", out.Effect)
	}
	if len(*audit) != 0 {
		t.Fatal("post-claim signal must not reach the audit sink")
	}
}

func TestMalformedPayloadsIgnored(t *testing.T) {
	_, m, _ := monitored(t)
	if out := m.Observe(Signal{Kind: SignalPageScan}); out.Effect != EffectNone {
		t.Fatal("page scan without payload must be ignored")
	}
	if out := m.Observe(Signal{Kind: SignalResourceSample}); out.Effect != EffectNone {
		t.Fatal("resource sample without payload must be ignored")
	}
	if out := m.Observe(Signal{Kind: "unknown"}); out.Effect != EffectNone {
		t.Fatal("unknown signal kind must be ignored")
	}
}
