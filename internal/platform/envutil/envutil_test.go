package envutil

import (
	"testing"
	"time"
)

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("TEST_TTL_SECONDS", "3600")
	t.Setenv("TEST_TTL_GO", "168h")
	t.Setenv("TEST_TTL_BAD", "soon")

	if got := Duration("TEST_TTL_SECONDS", time.Minute, nil); got != time.Hour {
		t.Fatalf("seconds: got %v", got)
	}
	if got := Duration("TEST_TTL_GO", time.Minute, nil); got != 168*time.Hour {
		t.Fatalf("go syntax: got %v", got)
	}
	if got := Duration("TEST_TTL_BAD", time.Minute, nil); got != time.Minute {
		t.Fatalf("fallback: got %v", got)
	}
	if got := Duration("TEST_TTL_UNSET", 2*time.Minute, nil); got != 2*time.Minute {
		t.Fatalf("unset: got %v", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TEST_FLAG", "Yes")
	t.Setenv("TEST_LIST", " a, ,b ,c")

	if !Bool("TEST_FLAG", false, nil) {
		t.Fatalf("expected true")
	}
	got := List("TEST_LIST", nil, nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestPresentTreatsBlankAsMissing(t *testing.T) {
	t.Setenv("TEST_A", "x")
	t.Setenv("TEST_B", "   ")
	if !Present("TEST_A") {
		t.Fatalf("TEST_A should be present")
	}
	if Present("TEST_A", "TEST_B") {
		t.Fatalf("blank TEST_B should count as missing")
	}
	if Present() {
		t.Fatalf("no names should not be present")
	}
}

func TestFloatFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_RATIO", "0.25")
	t.Setenv("TEST_RATIO_BAD", "quarter")

	if got := Float("TEST_RATIO", 1, nil); got != 0.25 {
		t.Fatalf("got %v", got)
	}
	if got := Float("TEST_RATIO_BAD", 1, nil); got != 1 {
		t.Fatalf("fallback: got %v", got)
	}
}
