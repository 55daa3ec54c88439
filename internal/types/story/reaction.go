package story

type ReactionType string

const (
	ReactionHeartbroken ReactionType = "heartbroken"
	ReactionLol         ReactionType = "lol"
	ReactionHug         ReactionType = "hug"
	ReactionExSucks     ReactionType = "ex-sucks"
)

type Reaction struct {
	Type        ReactionType `json:"type"`
	Emoji       string       `json:"emoji"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
}

var ReactionOptions = []Reaction{
	{Type: ReactionHeartbroken, Emoji: "💔", Label: "Heartbroken", Description: "This broke my heart too"},
	{Type: ReactionLol, Emoji: "😆", Label: "LOL", Description: "This made me laugh"},
	{Type: ReactionHug, Emoji: "🫂", Label: "Hug them", Description: "Sending virtual hugs"},
	{Type: ReactionExSucks, Emoji: "😡", Label: "That Ex Sucks", Description: "Your ex is terrible"},
}

func (t ReactionType) Valid() bool {
	_, ok := t.FieldKey()
	return ok
}

// FieldKey is the key the tally for t is stored under inside a story's
// reactions map. Stored keys must be plain identifiers so they can be
// addressed with dotted update paths, hence exSucks.
func (t ReactionType) FieldKey() (string, bool) {
	switch t {
	case ReactionHeartbroken:
		return "heartbroken", true
	case ReactionLol:
		return "lol", true
	case ReactionHug:
		return "hug", true
	case ReactionExSucks:
		return "exSucks", true
	}
	return "", false
}

// Reactions is the fixed-shape tally kept on each story.
type Reactions struct {
	Heartbroken int `json:"heartbroken"`
	Lol         int `json:"lol"`
	Hug         int `json:"hug"`
	ExSucks     int `json:"exSucks"`
	Total       int `json:"total"`
}

func (r Reactions) Count(t ReactionType) int {
	switch t {
	case ReactionHeartbroken:
		return r.Heartbroken
	case ReactionLol:
		return r.Lol
	case ReactionHug:
		return r.Hug
	case ReactionExSucks:
		return r.ExSucks
	}
	return 0
}
