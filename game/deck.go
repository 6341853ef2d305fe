package game

import "fmt"

// Image is a single entry returned by an ImageProvider. Metadata is opaque to the engine
// and travels on every card built from the image.
type Image struct {
	ID       string
	Metadata map[string]string
}

// Card is one physical card. Two cards share a PairKey. Cards are never mutated once built.
type Card struct {
	ID              string            `json:"id"`
	PairKey         string            `json:"pairKey"`
	PrimaryImageRef string            `json:"primaryImageUrl"`
	AltImageRef     string            `json:"grayscaleImageUrl"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Deck holds every card by id and the display order. Order is one shorter than Cards:
// the last id after shuffling is dropped so exactly one card is left without a partner.
type Deck struct {
	Cards map[string]Card
	Order []string
}

// ImageRefs builds image references for a fixed card size.
type ImageRefs struct {
	BaseURL string
	Width   int
	Height  int
}

// Primary returns the full colour reference for an image id.
func (r ImageRefs) Primary(imageID string) string {
	return fmt.Sprintf("%s/id/%s/%d/%d", r.BaseURL, imageID, r.Width, r.Height)
}

// Alt returns the grayscale, blurred variant of Primary.
func (r ImageRefs) Alt(imageID string) string {
	return r.Primary(imageID) + "?grayscale&blur=2"
}

// CardID returns the id of copy n (1 or 2) of an image.
func CardID(imageID string, n int) string {
	return fmt.Sprintf("%s--%d", imageID, n)
}

// BuildDeck creates two cards per image, shuffles the order and drops its last entry.
// shuffle has the signature of rand.Shuffle.
func BuildDeck(images []Image, refs ImageRefs, shuffle func(n int, swap func(i, j int))) Deck {
	deck := Deck{
		Cards: make(map[string]Card, 2*len(images)),
		Order: make([]string, 0, 2*len(images)),
	}
	for _, img := range images {
		for n := 1; n <= 2; n++ {
			id := CardID(img.ID, n)
			deck.Cards[id] = Card{
				ID:              id,
				PairKey:         img.ID,
				PrimaryImageRef: refs.Primary(img.ID),
				AltImageRef:     refs.Alt(img.ID),
				Metadata:        img.Metadata,
			}
			deck.Order = append(deck.Order, id)
		}
	}

	shuffle(len(deck.Order), func(i, j int) {
		deck.Order[i], deck.Order[j] = deck.Order[j], deck.Order[i]
	})
	if len(deck.Order) > 0 {
		deck.Order = deck.Order[:len(deck.Order)-1]
	}
	return deck
}

// Orphan returns the card whose partner was dropped from Order, or false for an empty deck.
func (d Deck) Orphan() (Card, bool) {
	inOrder := make(map[string]struct{}, len(d.Order))
	for _, id := range d.Order {
		inOrder[id] = struct{}{}
	}
	for id, c := range d.Cards {
		if _, ok := inOrder[id]; !ok {
			return d.Cards[partnerID(c)], true
		}
	}
	return Card{}, false
}

func partnerID(c Card) string {
	if c.ID == CardID(c.PairKey, 1) {
		return CardID(c.PairKey, 2)
	}
	return CardID(c.PairKey, 1)
}
