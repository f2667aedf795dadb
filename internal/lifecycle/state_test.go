// SPDX-License-Identifier: MIT

package lifecycle

import "testing"

func TestSequenceIsTotalAndStable(t *testing.T) {
	t.Parallel()

	if len(Sequence) != 13 {
		t.Fatalf("sequence length = %d, want 13", len(Sequence))
	}
	for i, s := range Sequence {
		idx, ok := Index(s)
		if !ok {
			t.Fatalf("state %s missing from index", s)
		}
		if idx != i {
			t.Errorf("Index(%s) = %d, want %d", s, idx, i)
		}
	}
	if Sequence[0] != StateDraft {
		t.Errorf("first state = %s, want DRAFT", Sequence[0])
	}
	if Sequence[len(Sequence)-1] != StateInvoiced {
		t.Errorf("last state = %s, want INVOICED", Sequence[len(Sequence)-1])
	}
}

func TestNextWalksSingleSteps(t *testing.T) {
	t.Parallel()

	cur := StateDraft
	steps := 0
	for {
		next, ok := Next(cur)
		if !ok {
			break
		}
		ci, _ := Index(cur)
		ni, _ := Index(next)
		if ni != ci+1 {
			t.Fatalf("Next(%s) = %s skips from %d to %d", cur, next, ci, ni)
		}
		cur = next
		steps++
	}
	if cur != StateInvoiced {
		t.Errorf("walk ended at %s, want INVOICED", cur)
	}
	if steps != len(Sequence)-1 {
		t.Errorf("walk took %d steps, want %d", steps, len(Sequence)-1)
	}
}

func TestNextTerminalAndUnknown(t *testing.T) {
	t.Parallel()

	if _, ok := Next(StateInvoiced); ok {
		t.Error("Next(INVOICED) should report no successor")
	}
	if _, ok := Next(State("BOGUS")); ok {
		t.Error("Next of unknown state should report no successor")
	}
	if _, ok := Index(State("BOGUS")); ok {
		t.Error("Index of unknown state should report not found")
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range Sequence {
		want := s == StateInvoiced
		if got := s.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestPrecedes(t *testing.T) {
	t.Parallel()

	if !StateDraft.Precedes(StateInvoiced) {
		t.Error("DRAFT should precede INVOICED")
	}
	if StateInvoiced.Precedes(StateDraft) {
		t.Error("INVOICED should not precede DRAFT")
	}
	if StateDraft.Precedes(StateDraft) {
		t.Error("a state should not precede itself")
	}
	if State("BOGUS").Precedes(StateDraft) {
		t.Error("unknown state should not precede anything")
	}
}

func TestCanDirectReceiveFrom(t *testing.T) {
	t.Parallel()

	for _, s := range Sequence {
		want := s == StateDraft || s == StatePendingOrderEntryValidation
		if got := CanDirectReceiveFrom(s); got != want {
			t.Errorf("CanDirectReceiveFrom(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestEveryStateHasLabel(t *testing.T) {
	t.Parallel()

	for _, s := range Sequence {
		if s.Label() == string(s) {
			t.Errorf("state %s is missing display metadata", s)
		}
	}
}
