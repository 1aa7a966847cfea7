package breaker_test

import (
	"testing"

	"reflow/breaker"
)

func wordBox(w float64) breaker.Item { return breaker.BoxItem(w, "w", 0, nil) }

func TestOptimalFit_SimpleJustifiedTwoLines(t *testing.T) {
	// Six 10-wide words separated by justify glue {4,2,2}; a 34-wide line
	// fits three words (30 + 2 glues) per line twice.
	var items []breaker.Item
	for i := 0; i < 6; i++ {
		if i > 0 {
			items = append(items, breaker.GlueItem(4, 2, 2))
		}
		items = append(items, wordBox(10))
	}

	breaks, ok := breaker.OptimalFit(items, 34, breaker.Tolerance)
	if !ok {
		t.Fatal("expected a feasible solution")
	}
	if len(breaks) < 2 || len(breaks) > 3 {
		t.Fatalf("expected 2-3 lines for six 10-wide words at width 34, got %d: %+v", len(breaks), breaks)
	}
}

func TestOptimalFit_EmptyItems(t *testing.T) {
	breaks, ok := breaker.OptimalFit(nil, 100, breaker.Tolerance)
	if !ok || breaks != nil {
		t.Errorf("expected (nil, true) for empty input, got (%v, %v)", breaks, ok)
	}
}

func TestOptimalFit_SingleOverfullWordInfeasible(t *testing.T) {
	items := []breaker.Item{wordBox(500)}
	_, ok := breaker.OptimalFit(items, 10, breaker.Tolerance)
	if ok {
		t.Error("expected infeasible result for a box wider than the line with no glue")
	}
}

func TestStandardFit_GreedyBreaksOnOverflow(t *testing.T) {
	var items []breaker.Item
	for i := 0; i < 4; i++ {
		if i > 0 {
			items = append(items, breaker.GlueItem(2, 1, 1))
		}
		items = append(items, wordBox(10))
	}
	breaks := breaker.StandardFit(items, 23)
	if len(breaks) < 2 {
		t.Fatalf("expected at least 2 lines from greedy fit, got %d: %+v", len(breaks), breaks)
	}
}
