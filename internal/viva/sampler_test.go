package viva

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
)

func makeBank(n int) []model.VivaQuestion {
	bank := make([]model.VivaQuestion, n)
	for i := range bank {
		bank[i] = model.VivaQuestion{
			ID:            uuid.New(),
			QuestionText:  fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: i % 4,
		}
	}
	return bank
}

func TestSampleDeterministic(t *testing.T) {
	bank := makeBank(25)
	first := Sample(bank, "42", DefaultSampleSize)
	for i := 0; i < 5; i++ {
		again := Sample(bank, "42", DefaultSampleSize)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different selection", i)
		}
	}
}

func TestSampleSize(t *testing.T) {
	bank := makeBank(30)
	got := Sample(bank, "7", DefaultSampleSize)
	if len(got) != DefaultSampleSize {
		t.Fatalf("len = %d, want %d", len(got), DefaultSampleSize)
	}
}

func TestSampleSmallBankReturnedWhole(t *testing.T) {
	for _, n := range []int{1, 5, 10} {
		bank := makeBank(n)
		got := Sample(bank, "9", DefaultSampleSize)
		if !reflect.DeepEqual(got, bank) {
			t.Fatalf("bank of %d should be returned unchanged", n)
		}
	}
}

func TestSampleEmptyBank(t *testing.T) {
	got := Sample(nil, "9", DefaultSampleSize)
	if len(got) != 0 {
		t.Fatalf("expected empty selection, got %d", len(got))
	}
}

// The selection keeps bank order: picked indices are sorted before mapping
// back, so the output must be a subsequence of the bank.
func TestSamplePreservesBankOrder(t *testing.T) {
	bank := makeBank(40)
	got := Sample(bank, "1234", DefaultSampleSize)

	pos := make(map[uuid.UUID]int, len(bank))
	for i, q := range bank {
		pos[q.ID] = i
	}
	prev := -1
	for _, q := range got {
		p, ok := pos[q.ID]
		if !ok {
			t.Fatalf("selected question not in bank: %s", q.ID)
		}
		if p <= prev {
			t.Fatalf("selection out of bank order at index %d", p)
		}
		prev = p
	}
}

func TestSampleNoDuplicates(t *testing.T) {
	bank := makeBank(15)
	got := Sample(bank, "555", DefaultSampleSize)
	seen := make(map[uuid.UUID]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSampleVariesByStudent(t *testing.T) {
	bank := makeBank(50)
	a := Sample(bank, "studentA", DefaultSampleSize)
	b := Sample(bank, "studentB99", DefaultSampleSize)
	if reflect.DeepEqual(a, b) {
		t.Fatal("distinct student keys produced an identical selection")
	}
}

func TestSeedFromSumsCharCodes(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"", 0},
		{"A", 65},
		{"ab", 97 + 98},
		{"42", 52 + 50},
	}
	for _, tt := range tests {
		if got := seedFrom(tt.key); got != tt.want {
			t.Errorf("seedFrom(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestSeededRandRange(t *testing.T) {
	for seed := 0; seed < 1000; seed++ {
		v := seededRand(seed)
		if v < 0 || v >= 1 {
			t.Fatalf("seededRand(%d) = %v, out of [0,1)", seed, v)
		}
	}
}
