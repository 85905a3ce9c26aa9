package scope

import "testing"

func TestChildShadowsOuterLayer(t *testing.T) {
	s := NewGlobal(map[string]float64{"x": 1})
	child := s.Child()
	child.Set("x", 2)

	v, err := child.Get("x")
	if err != nil || v != 2 {
		t.Fatalf("expected child's x=2, got %v err=%v", v, err)
	}

	v, err = s.Get("x")
	if err != nil || v != 1 {
		t.Fatalf("expected outer x to remain 1, got %v err=%v", v, err)
	}
}

func TestChildInheritsOuterNames(t *testing.T) {
	s := NewGlobal(map[string]float64{"rate": 0.05})
	child := s.Child()

	v, err := child.Get("rate")
	if err != nil || v != 0.05 {
		t.Fatalf("expected inherited rate=0.05, got %v err=%v", v, err)
	}
}

func TestSetTargetsInnermostLayerOnly(t *testing.T) {
	s := NewGlobal(map[string]float64{})
	child := s.Child()
	grandchild := child.Child()

	grandchild.Set("local", 9)

	if _, err := child.Get("local"); err == nil {
		t.Fatal("expected child not to see grandchild's binding")
	}
	if v, err := grandchild.Get("local"); err != nil || v != 9 {
		t.Fatalf("expected grandchild local=9, got %v err=%v", v, err)
	}
}

func TestGetGlobalIgnoresInnerLayers(t *testing.T) {
	s := NewGlobal(map[string]float64{"x": 1})
	child := s.Child()
	child.Set("x", 999) // shadow in inner layer

	v, err := child.GetGlobal("x")
	if err != nil || v != 1 {
		t.Fatalf("global.x must resolve against the global layer, not the shadow: got %v err=%v", v, err)
	}
}

func TestGetGlobalUndefinedName(t *testing.T) {
	s := NewGlobal(map[string]float64{})
	if _, err := s.GetGlobal("missing"); err == nil {
		t.Fatal("expected UndefinedName error for missing global")
	}
}

func TestUndefinedNamePropagatesThroughLayers(t *testing.T) {
	s := NewGlobal(map[string]float64{})
	child := s.Child()
	if _, err := child.Get("nope"); err == nil {
		t.Fatal("expected UndefinedName error")
	}
}

func TestGlobalsReturnsACopy(t *testing.T) {
	s := NewGlobal(map[string]float64{"x": 1})
	snap := s.Globals()
	snap["x"] = 42

	v, err := s.Get("x")
	if err != nil || v != 1 {
		t.Fatalf("mutating the returned map must not affect the Scope: got %v err=%v", v, err)
	}
}

func TestReservedNamesCoverGlossaryTerms(t *testing.T) {
	for _, name := range []string{"global", "result", "i", "random", "and", "or", "not"} {
		if !Reserved[name] {
			t.Errorf("expected %q to be reserved", name)
		}
	}
}
