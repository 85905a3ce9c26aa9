package calc

import (
	"math"
	"testing"

	"finsim/core/model"
	"finsim/core/random"
	"finsim/core/scope"
	"finsim/internal/document"
	ferrors "finsim/internal/errors"
)

func buildSingleResourceModel(t *testing.T, constants map[string]float64, r document.ResourceDoc) *model.Model {
	t.Helper()
	doc := &document.Document{
		CostCategories: []document.CategoryDoc{
			{Name: "test", Resources: []document.ResourceDoc{r}},
		},
	}
	for name, v := range constants {
		doc.Global.Const = append(doc.Global.Const, document.ConstEntry{Name: name, Value: v})
	}
	m, err := model.Build(doc)
	if err != nil {
		t.Fatalf("model.Build failed: %v", err)
	}
	return m
}

func runSingleResource(t *testing.T, m *model.Model) float64 {
	t.Helper()
	globalScope := scope.NewGlobal(globalsFromModel(m))
	rnd := random.New(42)
	rep, err := Run(m, globalScope, rnd, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Costs) != 1 || len(rep.Costs[0].Resources) != 1 {
		t.Fatalf("expected exactly one resource in the report, got %+v", rep.Costs)
	}
	return rep.Costs[0].Resources[0].Total
}

func globalsFromModel(m *model.Model) map[string]float64 {
	g := make(map[string]float64, len(m.Globals.Const))
	for k, v := range m.Globals.Const {
		g[k] = v
	}
	return g
}

// TestTieredVolumePricing reproduces the "Mapbox mobile-SDK tier"
// scenario: (users - 25000) / 1000 * 4 with users = 30000 yields 20.0.
func TestTieredVolumePricing(t *testing.T) {
	direct := "(global.users - 25000) / 1000 * 4"
	m := buildSingleResourceModel(t, map[string]float64{"users": 30000},
		document.ResourceDoc{Name: "mobile_sdk", Direct: &direct})

	got := runSingleResource(t, m)
	if math.Abs(got-20.0) > 1e-9 {
		t.Fatalf("expected 20.0, got %v", got)
	}
}

// TestPreprocessVisibility reproduces preprocess: { r = global.users * 2 },
// body Direct "r + 1", with users = 10, expecting 21.0.
func TestPreprocessVisibility(t *testing.T) {
	result := "r + 1"
	m := buildSingleResourceModel(t, map[string]float64{"users": 10},
		document.ResourceDoc{
			Name:       "visibility",
			Preprocess: []document.PreprocessDoc{{Name: "r", Expr: "global.users * 2"}},
			Result:     &result,
		})

	got := runSingleResource(t, m)
	if math.Abs(got-21.0) > 1e-9 {
		t.Fatalf("expected 21.0, got %v", got)
	}
}

// TestForLoopSumWithConstantExec reproduces iterator=5, aggregation=sum,
// exec=["result = 7"], expecting 35.0.
func TestForLoopSumWithConstantExec(t *testing.T) {
	m := buildSingleResourceModel(t, nil, document.ResourceDoc{
		Name: "sum_const",
		For: &document.ForDoc{
			Iterator:    "5",
			Aggregation: "sum",
			Exec:        []string{"result = 7"},
		},
	})

	got := runSingleResource(t, m)
	if got != 35.0 {
		t.Fatalf("expected 35.0, got %v", got)
	}
}

// TestForLoopAverageOfCounter reproduces iterator=4, aggregation=average,
// exec=["result = i"], expecting (1+2+3+4)/4 = 2.5.
func TestForLoopAverageOfCounter(t *testing.T) {
	m := buildSingleResourceModel(t, nil, document.ResourceDoc{
		Name: "avg_counter",
		For: &document.ForDoc{
			Iterator:    "4",
			Aggregation: "average",
			Exec:        []string{"result = i"},
		},
	})

	got := runSingleResource(t, m)
	if got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

// TestCaseFallThrough reproduces cases [(x<0,1),(x<10,2),(x>=10,3)] with
// x=5, expecting the second case's result, 2.0.
func TestCaseFallThrough(t *testing.T) {
	m := buildSingleResourceModel(t, nil, document.ResourceDoc{
		Name:       "tiered_case",
		Preprocess: []document.PreprocessDoc{{Name: "x", Expr: "5"}},
		Cases: []document.CaseDoc{
			{Case: "x < 0", Result: "1"},
			{Case: "x < 10", Result: "2"},
			{Case: "x >= 10", Result: "3"},
		},
	})

	got := runSingleResource(t, m)
	if got != 2.0 {
		t.Fatalf("expected 2.0, got %v", got)
	}
}

// TestRoundTripAggregationLaws proves sum = n*c, average = c, max = min = c
// over n constant-c iterations (§8 "Round-trip laws").
func TestRoundTripAggregationLaws(t *testing.T) {
	const n, c = 6, 3.0

	for _, agg := range []string{"sum", "average", "max", "min"} {
		m := buildSingleResourceModel(t, nil, document.ResourceDoc{
			Name: "agg_" + agg,
			For: &document.ForDoc{
				Iterator:    "6",
				Aggregation: agg,
				Exec:        []string{"result = 3"},
			},
		})
		got := runSingleResource(t, m)

		var want float64
		switch agg {
		case "sum":
			want = n * c
		case "average", "max", "min":
			want = c
		}
		if got != want {
			t.Fatalf("aggregation %s: expected %v, got %v", agg, want, got)
		}
	}
}

// TestForLoopDegeneratePolicyIsZero proves a non-positive iterator count
// yields 0.0 for every aggregation rather than an error.
func TestForLoopDegeneratePolicyIsZero(t *testing.T) {
	for _, agg := range []string{"sum", "average", "max", "min"} {
		m := buildSingleResourceModel(t, nil, document.ResourceDoc{
			Name: "degenerate_" + agg,
			For: &document.ForDoc{
				Iterator:    "0",
				Aggregation: agg,
				Exec:        []string{"result = 99"},
			},
		})
		got := runSingleResource(t, m)
		if got != 0.0 {
			t.Fatalf("aggregation %s with n=0: expected 0.0, got %v", agg, got)
		}
	}
}

// TestCaseExhaustionIsNoMatchingCase proves an exhausted case list fails
// the whole resource rather than defaulting to 0.
func TestCaseExhaustionIsNoMatchingCase(t *testing.T) {
	m := buildSingleResourceModel(t, nil, document.ResourceDoc{
		Name: "exhausted",
		Cases: []document.CaseDoc{
			{Case: "1 < 0", Result: "1"},
		},
	})
	globalScope := scope.NewGlobal(nil)
	rnd := random.New(42)
	if _, err := Run(m, globalScope, rnd, 0); !ferrors.IsType(err, ferrors.TypeNoMatchingCase) {
		t.Fatalf("expected the category run to fail with NoMatchingCase when no case matches, got %v", err)
	}
}
