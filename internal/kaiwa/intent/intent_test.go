package intent_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bdobrica/Kaiwa/internal/kaiwa/intent"
)

const validDoc = `{
  "intents": [
    {"tag": "greeting", "patterns": ["hello", "hi there"], "responses": ["Hi there!", "Hello!"]},
    {"tag": "hours", "patterns": ["when are you open"], "responses": ["We meet every Friday."]},
    {"tag": "fallback", "patterns": [], "responses": ["I don't understand."]}
  ]
}`

func mustParse(t *testing.T, doc string) *intent.Catalog {
	t.Helper()
	c, err := intent.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	return c
}

func TestParse_ValidDocument(t *testing.T) {
	c := mustParse(t, validDoc)

	if got := c.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	in, ok := c.Get("greeting")
	if !ok {
		t.Fatal("Get(greeting) not found")
	}
	if len(in.Patterns) != 2 || in.Patterns[0] != "hello" {
		t.Errorf("unexpected patterns: %v", in.Patterns)
	}
	if len(in.Responses) != 2 {
		t.Errorf("unexpected responses: %v", in.Responses)
	}
}

func TestParse_PreservesDocumentOrder(t *testing.T) {
	c := mustParse(t, validDoc)

	snapshot := c.Snapshot()
	want := []string{"greeting", "hours", "fallback"}
	if len(snapshot) != len(want) {
		t.Fatalf("Snapshot() returned %d intents, want %d", len(snapshot), len(want))
	}
	for i, tag := range want {
		if snapshot[i].Tag != tag {
			t.Errorf("snapshot[%d].Tag = %q, want %q", i, snapshot[i].Tag, tag)
		}
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	if _, err := intent.Parse([]byte(`{"intents": [`)); err == nil {
		t.Error("Parse() of malformed JSON succeeded; expected error")
	}
}

func TestParse_SchemaViolation(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing intents key", `{}`},
		{"missing tag", `{"intents": [{"patterns": [], "responses": []}]}`},
		{"empty tag", `{"intents": [{"tag": "", "patterns": [], "responses": []}]}`},
		{"non-string pattern", `{"intents": [{"tag": "a", "patterns": [1], "responses": []}]}`},
		{"unknown field", `{"intents": [{"tag": "a", "patterns": [], "responses": [], "extra": true}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := intent.Parse([]byte(tc.doc)); err == nil {
				t.Errorf("Parse() accepted invalid document: %s", tc.doc)
			}
		})
	}
}

func TestNewCatalog_DuplicateTag(t *testing.T) {
	_, err := intent.NewCatalog([]intent.Intent{
		{Tag: "greeting", Patterns: []string{"hello"}},
		{Tag: "greeting", Patterns: []string{"hi"}},
	})
	if err == nil {
		t.Error("NewCatalog() accepted duplicate tags; expected error")
	}
}

func TestLoadFile_MissingFileYieldsEmptyCatalog(t *testing.T) {
	c := intent.LoadFile(filepath.Join(t.TempDir(), "nope.json"), slog.Default())
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for missing file", c.Len())
	}
}

func TestLoadFile_MalformedFileYieldsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := intent.LoadFile(path, slog.Default())
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for malformed file", c.Len())
	}
}

func TestLoadFile_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.json")
	if err := os.WriteFile(path, []byte(validDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	c := intent.LoadFile(path, slog.Default())
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestAddPattern(t *testing.T) {
	c := mustParse(t, validDoc)

	if !c.AddPattern("good morning", "greeting") {
		t.Fatal("AddPattern(greeting) = false, want true")
	}
	in, _ := c.Get("greeting")
	if len(in.Patterns) != 3 || in.Patterns[2] != "good morning" {
		t.Errorf("patterns after AddPattern: %v", in.Patterns)
	}

	if c.AddPattern("anything", "no-such-tag") {
		t.Error("AddPattern(no-such-tag) = true, want false (no-op)")
	}
}

func TestSnapshot_IsolatedFromMutation(t *testing.T) {
	c := mustParse(t, validDoc)
	snapshot := c.Snapshot()
	before := len(snapshot[0].Patterns)

	c.AddPattern("howdy", "greeting")

	if len(snapshot[0].Patterns) != before {
		t.Error("Snapshot() contents changed after AddPattern; expected isolation")
	}
}

func TestFallbackResponse_FromFallbackIntent(t *testing.T) {
	c := mustParse(t, validDoc)
	got := c.FallbackResponse(intent.FallbackTag)
	if got != "I don't understand." {
		t.Errorf("FallbackResponse() = %q, want the fallback intent's response", got)
	}
}

func TestFallbackResponse_LiteralWhenAbsent(t *testing.T) {
	c := mustParse(t, `{"intents": [{"tag": "greeting", "patterns": ["hello"], "responses": ["Hi!"]}]}`)
	got := c.FallbackResponse(intent.FallbackTag)
	if got != intent.DefaultFallbackResponse {
		t.Errorf("FallbackResponse() = %q, want %q", got, intent.DefaultFallbackResponse)
	}
}

func TestFallbackResponse_LiteralWhenEmptyResponses(t *testing.T) {
	c := mustParse(t, `{"intents": [{"tag": "fallback", "patterns": [], "responses": []}]}`)
	got := c.FallbackResponse(intent.FallbackTag)
	if got != intent.DefaultFallbackResponse {
		t.Errorf("FallbackResponse() = %q, want %q", got, intent.DefaultFallbackResponse)
	}
}

func TestRandomResponse(t *testing.T) {
	c := mustParse(t, validDoc)

	resp, ok := c.RandomResponse("greeting")
	if !ok {
		t.Fatal("RandomResponse(greeting) = false, want true")
	}
	if resp != "Hi there!" && resp != "Hello!" {
		t.Errorf("RandomResponse(greeting) = %q, not among canned responses", resp)
	}

	if _, ok := c.RandomResponse("no-such-tag"); ok {
		t.Error("RandomResponse(no-such-tag) = true, want false")
	}
}
