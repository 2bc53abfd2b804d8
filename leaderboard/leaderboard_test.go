package leaderboard

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func TestMergeCapsAndSortsForAnyOrder(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		var list []Entry
		for i := 0; i < 40; i++ {
			list = Merge(list, Entry{Username: "p", Score: r.IntN(500), Timestamp: int64(i)})
			if len(list) > Capacity {
				t.Fatalf("round %d: list grew to %d", round, len(list))
			}
			for j := 1; j < len(list); j++ {
				if list[j-1].Score < list[j].Score {
					t.Fatalf("round %d: not sorted at %d: %v", round, j, list)
				}
			}
		}
	}
}

func TestMergeKeepsTopScores(t *testing.T) {
	var list []Entry
	for i := 1; i <= 15; i++ {
		list = Merge(list, Entry{Username: "p", Score: i * 10})
	}
	if len(list) != Capacity || list[0].Score != 150 || list[Capacity-1].Score != 60 {
		t.Fatalf("unexpected board: %v", list)
	}
	if Qualifies(list, 60) || !Qualifies(list, 61) {
		t.Fatalf("qualify threshold wrong")
	}
}

func TestMergeTieKeepsEarlierFirst(t *testing.T) {
	list := Merge(nil, Entry{Username: "late", Score: 5, Timestamp: 20})
	list = Merge(list, Entry{Username: "early", Score: 5, Timestamp: 10})
	if list[0].Username != "early" {
		t.Fatalf("tie order: %v", list)
	}
}

func TestMergeDoesNotAliasInput(t *testing.T) {
	base := []Entry{{Username: "a", Score: 1}}
	_ = Merge(base, Entry{Username: "b", Score: 9})
	if base[0].Username != "a" {
		t.Fatalf("input mutated")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	s := NewFileStore(path)

	list, err := s.Load()
	if err != nil || len(list) != 0 {
		t.Fatalf("missing file should load empty: %v %v", list, err)
	}
	for i := 0; i < 12; i++ {
		if _, err := s.Submit(Entry{Username: "runner", Score: i, Distance: i * 3, Timestamp: int64(i)}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	list, err = NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(list) != Capacity || list[0].Score != 11 {
		t.Fatalf("persisted board: %v", list)
	}
}

func TestFileStoreRejectsEmptyUsername(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "board.json"))
	if _, err := s.Submit(Entry{Score: 1}); !errors.Is(err, ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Submit(Entry{Username: "x", Score: 1}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestOnlineRanking(t *testing.T) {
	peers := []Entry{{Username: "a", Score: 3}, {Username: "b", Score: 7}, {Username: "c", Score: 5}}
	got := Online(peers)
	if got[0].Username != "b" || got[2].Username != "a" || peers[0].Username != "a" {
		t.Fatalf("online ranking: %v", got)
	}
}
