package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeLearner struct {
	minSize int
	units   []int
	large   [][]int
	glues   []int
	ids     []uint64
}

func (l *fakeLearner) Learning(size int) bool { return size >= l.minSize || l.minSize == 0 }

func (l *fakeLearner) ExportLearnedUnitClause(id uint64, elit int) {
	l.ids = append(l.ids, id)
	l.units = append(l.units, elit)
}

func (l *fakeLearner) ExportLearnedLargeClause(id uint64, elits []int, glue int) {
	l.ids = append(l.ids, id)
	l.large = append(l.large, append([]int(nil), elits...))
	l.glues = append(l.glues, glue)
}

func TestLearnerObserverExportsDerivedClauses(t *testing.T) {
	e, _ := newTestEngine(false)
	learner := &fakeLearner{}
	e.External().ConnectLearner(learner)
	obs := NewLearnerObserver(e.External())

	obs.AddDerivedClause(7, true, false, 2, []int{1, -2, 3}, nil)
	obs.AddDerivedClause(8, true, false, 1, []int{-4}, nil)

	if diff := cmp.Diff([][]int{{1, -2, 3}}, learner.large); diff != "" {
		t.Errorf("large exports (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{-4}, learner.units); diff != "" {
		t.Errorf("unit exports (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{7, 8}, learner.ids); diff != "" {
		t.Errorf("export IDs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, learner.glues); diff != "" {
		t.Errorf("export glues (-want +got):\n%s", diff)
	}
}

// Imported clauses must not be re-exported: they would loop through the
// sharing fabric forever.
func TestLearnerObserverDropsImportedClauses(t *testing.T) {
	e, _ := newTestEngine(false)
	learner := &fakeLearner{}
	e.External().ConnectLearner(learner)
	obs := NewLearnerObserver(e.External())

	obs.AddDerivedClause(7, true, true, 2, []int{1, 2}, nil)

	if len(learner.large)+len(learner.units) != 0 {
		t.Error("imported clause was re-exported")
	}
}

func TestLearnerObserverWithoutLearner(t *testing.T) {
	e, _ := newTestEngine(false)
	obs := NewLearnerObserver(e.External())

	// Must not crash without a learner attached.
	obs.AddDerivedClause(7, true, false, 2, []int{1, 2}, nil)
}

func TestLearnerObserverHonoursLearningFilter(t *testing.T) {
	e, _ := newTestEngine(false)
	learner := &fakeLearner{minSize: 3}
	e.External().ConnectLearner(learner)
	obs := NewLearnerObserver(e.External())

	obs.AddDerivedClause(7, true, false, 1, []int{1, 2}, nil)
	obs.AddDerivedClause(8, true, false, 2, []int{1, 2, 3}, nil)

	if diff := cmp.Diff([][]int{{1, 2, 3}}, learner.large); diff != "" {
		t.Errorf("filtered exports (-want +got):\n%s", diff)
	}
}

// The empty clause never leaves the solver.
func TestLearnerObserverIgnoresEmptyClause(t *testing.T) {
	e, _ := newTestEngine(false)
	learner := &fakeLearner{}
	e.External().ConnectLearner(learner)
	obs := NewLearnerObserver(e.External())

	obs.AddDerivedClause(7, false, false, 1, nil, nil)

	if len(learner.large)+len(learner.units) != 0 {
		t.Error("empty clause was exported")
	}
}
