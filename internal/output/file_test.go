package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goodcheck/internal/rules"
)

func TestNewFileSink_InferFormat_FromExtension(t *testing.T) {
	for _, name := range []string{"out.json", "out.ndjson", "out.jsonl"} {
		path := filepath.Join(t.TempDir(), name)
		s, err := NewFileSink(path, "")
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", name, err)
		}
		_ = s.Close()
	}
}

func TestNewFileSink_UnknownExtension_Errors_WhenFormatOmitted(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "sink.unknown"), "")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot infer output format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFileSink_UnsupportedFormat_Errors(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "sink.json"), "xml")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFileSink_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file, got %v", err)
	}
}

func TestFileSink_JSON_AggregatesMatches_AndIgnoresEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	s, err := NewFileSink(path, "json")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	if err := s.Write(Event{Type: EventRunStarted}); err != nil {
		t.Fatalf("Write(event) failed: %v", err)
	}
	if err := s.Write(rules.Match{Path: "a.rb", Line: 3, RuleID: "r"}); err != nil {
		t.Fatalf("Write(match) failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var got []rules.Match
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 1 || got[0].Path != "a.rb" {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestFileSink_NDJSON_StreamsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")

	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	_ = s.Write(Event{Type: EventRunStarted})
	_ = s.Write(rules.Match{Path: "a.rb", Line: 3, RuleID: "r"})
	_ = s.Write(rules.Problem{Kind: rules.ProblemFile, Path: "b.rb", Message: "denied"})
	_ = s.Write(RunFinishedEvent(2))
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	var last Event
	if err := json.Unmarshal([]byte(lines[3]), &last); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if last.ExitCode == nil || *last.ExitCode != 2 {
		t.Fatalf("expected exit code 2, got %+v", last.ExitCode)
	}
}
