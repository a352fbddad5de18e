package fallback

import (
	"errors"
	"testing"

	"github.com/hyperifyio/dataminer/internal/result"
)

func TestRemedyRow_Layout(t *testing.T) {
	row := Twitter("golang").Row()
	want := []string{"message", "solution", "step1", "step2", "step3", "code_example", "note"}
	got := row.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys: got %v want %v", got, want)
		}
	}
	if row.String("step3") != "3. Query the recent search endpoint for: golang" {
		t.Fatalf("step3: %q", row.String("step3"))
	}
}

func TestRemedyResult_IsPlaceholder(t *testing.T) {
	r := Reddit(errors.New("status 429")).Result(result.ReasonUnreachable)
	if !r.IsPlaceholder() || r.Reason != result.ReasonUnreachable {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Message() != "Reddit data could not be retrieved: status 429" {
		t.Fatalf("message: %q", r.Message())
	}
	if r.Table.Len() != 1 {
		t.Fatalf("placeholder must have exactly one row")
	}
}

func TestEmpty(t *testing.T) {
	r := Empty("tweets")
	if r.Reason != result.ReasonEmpty || r.Message() != "No tweets found for the given criteria" {
		t.Fatalf("unexpected: %+v", r)
	}
}

func TestInstagram_HasLimitation(t *testing.T) {
	row := Instagram("nasa").Row()
	if row.Keys()[1] != "limitation" {
		t.Fatalf("limitation should follow message: %v", row.Keys())
	}
	if row.String("option3") == "" {
		t.Fatalf("expected alternatives")
	}
}
