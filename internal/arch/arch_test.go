package arch

import "testing"

func TestLoadUnknownArch(t *testing.T) {
	r := NewRegistry()
	err := r.Load("does-not-exist")
	if err == nil {
		t.Fatal("expected ConfigError for unknown architecture")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestCurrentBeforeLoad(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Current(); err == nil {
		t.Fatal("expected ConfigError before any Load")
	}
}

func TestLoadIdempotent(t *testing.T) {
	r := NewRegistry()
	if err := r.Load("xtensa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Load("xtensa"); err != nil {
		t.Fatalf("second load of same arch should succeed, got: %v", err)
	}
}

func TestLoadSecondDifferentArchFails(t *testing.T) {
	r := NewRegistry()
	if err := r.Load("xtensa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	register("fake", newXtensa)
	err := r.Load("fake")
	if err == nil {
		t.Fatal("expected ConfigError loading a second distinct architecture")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestXtensaConventions(t *testing.T) {
	r := NewRegistry()
	if err := r.Load("xtensa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := r.Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := a.CallParams(0)
	want := RegSeq{"a2", "a3", "a4", "a5", "a6", "a7"}
	if len(params) != len(want) {
		t.Fatalf("CallParams: got %v, want %v", params, want)
	}
	for i := range want {
		if params[i] != want[i] {
			t.Fatalf("CallParams[%d]: got %s, want %s", i, params[i], want[i])
		}
	}

	ret := a.CallRet(0)
	if len(ret) != 4 || ret[0] != "a2" || ret[3] != "a5" {
		t.Fatalf("CallRet: got %v", ret)
	}

	save := a.CallSave(0)
	for _, r := range []Reg{"a12", "a13", "a14", "a15", "sp"} {
		if _, ok := save[r]; !ok {
			t.Fatalf("CallSave missing %s", r)
		}
	}

	all := a.AllRegs()
	for p := range ToRegSet(params) {
		if _, ok := all[p]; !ok {
			t.Fatalf("param register %s not in register universe", p)
		}
	}

	if len(a.RetUses()) != 0 {
		t.Fatalf("expected empty RetUses, got %v", a.RetUses())
	}

	defs := CallDefs(a, 0)
	for _, r := range ret {
		if _, ok := defs[r]; !ok {
			t.Fatalf("CallDefs missing return register %s", r)
		}
	}
	for r := range save {
		if _, ok := defs[r]; ok {
			t.Fatalf("CallDefs should not include call-save register %s", r)
		}
	}
}
