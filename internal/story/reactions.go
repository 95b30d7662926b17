package story

// ReactionKind is one of the eight fixed reaction categories. The string
// value is the wire key.
type ReactionKind string

const (
	ThumbsUp   ReactionKind = "+1"
	ThumbsDown ReactionKind = "-1"
	Laugh      ReactionKind = "laugh"
	Hooray     ReactionKind = "hooray"
	Confused   ReactionKind = "confused"
	Heart      ReactionKind = "heart"
	Rocket     ReactionKind = "rocket"
	Eyes       ReactionKind = "eyes"
)

var canonicalOrder = [...]ReactionKind{ThumbsUp, ThumbsDown, Laugh, Hooray, Confused, Heart, Rocket, Eyes}

var glyphs = map[ReactionKind]string{
	ThumbsUp:   "👍",
	ThumbsDown: "👎",
	Laugh:      "😄",
	Hooray:     "🎉",
	Confused:   "😕",
	Heart:      "❤️",
	Rocket:     "🚀",
	Eyes:       "👀",
}

// CanonicalOrder returns the display order of reaction kinds.
func CanonicalOrder() []ReactionKind {
	out := make([]ReactionKind, len(canonicalOrder))
	copy(out, canonicalOrder[:])
	return out
}

// Glyph returns the emoji for k, or "" for an unknown kind.
func (k ReactionKind) Glyph() string {
	return glyphs[k]
}

// Valid reports whether k is one of the eight kinds.
func (k ReactionKind) Valid() bool {
	_, ok := glyphs[k]
	return ok
}

// ReactionCounts maps kinds to counts. A nil map means the record carried no
// reactions at all.
type ReactionCounts map[ReactionKind]int

// Reaction is one displayable kind/count pair.
type Reaction struct {
	Kind  ReactionKind
	Count int
}

// Visible returns the kinds with a positive count, in canonical order.
func (rc ReactionCounts) Visible() []Reaction {
	if rc == nil {
		return nil
	}
	var out []Reaction
	for _, kind := range canonicalOrder {
		if count, ok := rc[kind]; ok && count > 0 {
			out = append(out, Reaction{Kind: kind, Count: count})
		}
	}
	return out
}

// Total sums the positive counts.
func (rc ReactionCounts) Total() int {
	total := 0
	for _, r := range rc.Visible() {
		total += r.Count
	}
	return total
}
