package search

import "testing"

func TestEmptySpaceSingleIterationNoParams(t *testing.T) {
	calls := 0
	EmptySpace{}.Iterate(func(p Params) {
		calls++
		if len(p) != 0 {
			t.Fatalf("expected empty params, got %+v", p)
		}
	})
	if calls != 1 {
		t.Fatalf("expected 1 iteration, got %d", calls)
	}
	if (EmptySpace{}).Size() != 1 {
		t.Fatalf("expected size 1")
	}
}

func TestGridSearchSizeIsProductOfParameterSizes(t *testing.T) {
	g := NewGridSearch(map[string][]float64{
		"fast": {5, 10},
		"slow": {20, 30, 40},
	})
	if g.Size() != 6 {
		t.Fatalf("expected size 6, got %d", g.Size())
	}

	seen := make(map[[2]float64]bool)
	count := 0
	g.Iterate(func(p Params) {
		count++
		seen[[2]float64{p["fast"], p["slow"]}] = true
	})
	if count != 6 {
		t.Fatalf("expected 6 iterations, got %d", count)
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct combinations, got %d", len(seen))
	}
}

func TestGridSearchEmptyParamsSingleIteration(t *testing.T) {
	g := NewGridSearch(nil)
	calls := 0
	g.Iterate(func(p Params) { calls++ })
	if calls != 1 {
		t.Fatalf("expected 1 iteration for an empty grid, got %d", calls)
	}
}

func TestRandomSearchDrawsRequestedSizeReproducibly(t *testing.T) {
	lists := map[string][]float64{"threshold": {1, 2, 3, 4, 5}}
	generators := map[string]Generator{
		"scale": func(rand01 func() float64) float64 { return 0.5 + rand01() },
	}

	first := make([]Params, 0, 10)
	NewRandomSearch(10, lists, generators, 42).Iterate(func(p Params) {
		first = append(first, p.Clone())
	})
	if len(first) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(first))
	}

	second := make([]Params, 0, 10)
	NewRandomSearch(10, lists, generators, 42).Iterate(func(p Params) {
		second = append(second, p.Clone())
	})

	for i := range first {
		if first[i]["threshold"] != second[i]["threshold"] || first[i]["scale"] != second[i]["scale"] {
			t.Fatalf("expected same seed to reproduce sample %d, got %+v vs %+v", i, first[i], second[i])
		}
	}
}
