package environment_test

import (
	"testing"
	"time"

	"github.com/bdobrica/Kaiwa/common/environment"
)

func TestStringOr(t *testing.T) {
	t.Setenv("KAIWA_TEST_STR", "value")
	if got := environment.StringOr("KAIWA_TEST_STR", "default"); got != "value" {
		t.Errorf("StringOr() = %q, want value", got)
	}
	if got := environment.StringOr("KAIWA_TEST_UNSET", "default"); got != "default" {
		t.Errorf("StringOr() = %q, want default", got)
	}
}

func TestRequiredString(t *testing.T) {
	t.Setenv("KAIWA_TEST_REQ", "present")
	if got, err := environment.RequiredString("KAIWA_TEST_REQ"); err != nil || got != "present" {
		t.Errorf("RequiredString() = %q, %v", got, err)
	}
	if _, err := environment.RequiredString("KAIWA_TEST_REQ_UNSET"); err == nil {
		t.Error("RequiredString() of unset variable returned no error")
	}
}

func TestBoolOr(t *testing.T) {
	t.Setenv("KAIWA_TEST_BOOL", "true")
	if !environment.BoolOr("KAIWA_TEST_BOOL", false) {
		t.Error("BoolOr() = false, want true")
	}
	t.Setenv("KAIWA_TEST_BOOL", "not-a-bool")
	if environment.BoolOr("KAIWA_TEST_BOOL", false) {
		t.Error("BoolOr() of unparseable value should return the default")
	}
}

func TestIntOr(t *testing.T) {
	t.Setenv("KAIWA_TEST_INT", "42")
	if got := environment.IntOr("KAIWA_TEST_INT", 7); got != 42 {
		t.Errorf("IntOr() = %d, want 42", got)
	}
	t.Setenv("KAIWA_TEST_INT", "nope")
	if got := environment.IntOr("KAIWA_TEST_INT", 7); got != 7 {
		t.Errorf("IntOr() of unparseable value = %d, want default 7", got)
	}
}

func TestFloatOr(t *testing.T) {
	t.Setenv("KAIWA_TEST_FLOAT", "0.75")
	if got := environment.FloatOr("KAIWA_TEST_FLOAT", 0.5); got != 0.75 {
		t.Errorf("FloatOr() = %v, want 0.75", got)
	}
	t.Setenv("KAIWA_TEST_FLOAT", "nope")
	if got := environment.FloatOr("KAIWA_TEST_FLOAT", 0.5); got != 0.5 {
		t.Errorf("FloatOr() of unparseable value = %v, want default 0.5", got)
	}
}

func TestDurationOr(t *testing.T) {
	t.Setenv("KAIWA_TEST_DUR", "30s")
	if got := environment.DurationOr("KAIWA_TEST_DUR", time.Minute); got != 30*time.Second {
		t.Errorf("DurationOr() = %v, want 30s", got)
	}
	t.Setenv("KAIWA_TEST_DUR", "soon")
	if got := environment.DurationOr("KAIWA_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("DurationOr() of unparseable value = %v, want default 1m", got)
	}
}
