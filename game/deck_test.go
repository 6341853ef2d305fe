package game

import (
	"math/rand"
	"sort"
	"strconv"
	"testing"
)

func testRefs() ImageRefs {
	return ImageRefs{BaseURL: "https://picsum.photos", Width: 200, Height: 300}
}

func testImages(n int) []Image {
	images := make([]Image, n)
	for i := range images {
		images[i] = Image{ID: strconv.Itoa(i + 1)}
	}
	return images
}

func noShuffle(int, func(i, j int)) {}

func TestBuildDeck_Sizes(t *testing.T) {
	for n := 1; n <= 12; n++ {
		deck := BuildDeck(testImages(n), testRefs(), rand.Shuffle)

		if len(deck.Cards) != 2*n {
			t.Errorf("n=%d: expected %d cards, got %d", n, 2*n, len(deck.Cards))
		}
		if len(deck.Order) != 2*n-1 {
			t.Errorf("n=%d: expected order length %d, got %d", n, 2*n-1, len(deck.Order))
		}

		pairCount := make(map[string]int)
		for id, card := range deck.Cards {
			if card.ID != id {
				t.Errorf("n=%d: card keyed %q has id %q", n, id, card.ID)
			}
			pairCount[card.PairKey]++
		}
		for key, count := range pairCount {
			if count != 2 {
				t.Errorf("n=%d: pair %s has %d cards, expected 2", n, key, count)
			}
		}
	}
}

func TestBuildDeck_OrderIsPermutationMinusOne(t *testing.T) {
	deck := BuildDeck(testImages(8), testRefs(), rand.Shuffle)

	seen := make(map[string]int)
	for _, id := range deck.Order {
		seen[id]++
		if _, ok := deck.Cards[id]; !ok {
			t.Errorf("order contains %q which is not a card", id)
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("id %q appears %d times in order", id, count)
		}
	}

	missing := 0
	for id := range deck.Cards {
		if seen[id] == 0 {
			missing++
		}
	}
	if missing != 1 {
		t.Errorf("expected exactly 1 card missing from order, got %d", missing)
	}
}

func TestBuildDeck_DropsLastAfterShuffle(t *testing.T) {
	deck := BuildDeck(testImages(3), testRefs(), noShuffle)

	want := []string{"1--1", "1--2", "2--1", "2--2", "3--1"}
	if len(deck.Order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, deck.Order)
	}
	for i := range want {
		if deck.Order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, deck.Order[i], want[i])
		}
	}

	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	deck = BuildDeck(testImages(3), testRefs(), reverse)
	if last := deck.Order[len(deck.Order)-1]; last != "1--2" {
		t.Errorf("expected last shown card 1--2 after reversing, got %q", last)
	}
	if _, ok := deck.Cards["1--1"]; !ok {
		t.Error("dropped card should still be in Cards")
	}
}

func TestBuildDeck_ShuffleUsesEveryPosition(t *testing.T) {
	// Over many shuffles every id should at some point be the dropped one.
	dropped := make(map[string]bool)
	for i := 0; i < 500; i++ {
		deck := BuildDeck(testImages(3), testRefs(), rand.Shuffle)
		shown := make(map[string]bool)
		for _, id := range deck.Order {
			shown[id] = true
		}
		for id := range deck.Cards {
			if !shown[id] {
				dropped[id] = true
			}
		}
	}
	if len(dropped) != 6 {
		ids := make([]string, 0, len(dropped))
		for id := range dropped {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		t.Errorf("expected all 6 ids to be dropped at least once, got %v", ids)
	}
}

func TestBuildDeck_CardFields(t *testing.T) {
	images := []Image{{ID: "1004", Metadata: map[string]string{"author": "Greg Rakozy"}}}
	deck := BuildDeck(images, testRefs(), noShuffle)

	card := deck.Cards["1004--2"]
	if card.PairKey != "1004" {
		t.Errorf("expected PairKey=1004, got %q", card.PairKey)
	}
	if card.PrimaryImageRef != "https://picsum.photos/id/1004/200/300" {
		t.Errorf("unexpected primary ref %q", card.PrimaryImageRef)
	}
	if card.AltImageRef != "https://picsum.photos/id/1004/200/300?grayscale&blur=2" {
		t.Errorf("unexpected alt ref %q", card.AltImageRef)
	}
	if card.Metadata["author"] != "Greg Rakozy" {
		t.Errorf("expected metadata to pass through, got %v", card.Metadata)
	}
}

func TestBuildDeck_Empty(t *testing.T) {
	deck := BuildDeck(nil, testRefs(), rand.Shuffle)
	if len(deck.Cards) != 0 || len(deck.Order) != 0 {
		t.Errorf("expected empty deck, got %d cards / %d order", len(deck.Cards), len(deck.Order))
	}
	if _, ok := deck.Orphan(); ok {
		t.Error("empty deck should have no orphan")
	}
}

func TestDeckOrphan(t *testing.T) {
	deck := BuildDeck(testImages(3), testRefs(), noShuffle)

	orphan, ok := deck.Orphan()
	if !ok {
		t.Fatal("expected an orphan")
	}
	// 3--2 was dropped, so 3--1 is left without a partner.
	if orphan.ID != "3--1" {
		t.Errorf("expected orphan 3--1, got %q", orphan.ID)
	}
}
