package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestStripFences(t *testing.T) {
	input := "```json\n[\"a\", \"b\"]\n```\n"
	want := `["a", "b"]`
	if got := StripFences(input); got != want {
		t.Fatalf("StripFences: expected %q, got %q", want, got)
	}

	raw := `  ["a"]  `
	if got := StripFences(raw); got != `["a"]` {
		t.Fatalf("StripFences (no fences): expected trimmed string, got %q", got)
	}

	if got := StripFences("```[\"a\"]```"); got != `["a"]` {
		t.Fatalf("StripFences (single line): got %q", got)
	}
}

func TestSplitCommaList(t *testing.T) {
	cases := map[string][]string{
		"React,Node.js,MongoDB":    {"React", "Node.js", "MongoDB"},
		" Go , Postgres ,, Redis ": {"Go", "Postgres", "Redis"},
		"":                         {},
		"Solo":                     {"Solo"},
	}
	for input, want := range cases {
		if got := SplitCommaList(input); !reflect.DeepEqual(got, want) {
			t.Fatalf("SplitCommaList(%q) = %#v, want %#v", input, got, want)
		}
	}
}

func TestJSONHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	JSON(rec, http.StatusCreated, payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("JSON: expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("JSON: expected content-type application/json, got %s", contentType)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("JSON body mismatch: %+v", got)
	}

	rec2 := httptest.NewRecorder()
	RawJSON(rec2, http.StatusAccepted, []byte(`{"id":"call-1"}`))
	if rec2.Code != http.StatusAccepted || rec2.Body.String() != `{"id":"call-1"}` {
		t.Fatalf("RawJSON: unexpected response %d %s", rec2.Code, rec2.Body.String())
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		logger, err := NewLogger(env)
		if err != nil || logger == nil {
			t.Fatalf("NewLogger(%q) failed: %v", env, err)
		}
	}
}
