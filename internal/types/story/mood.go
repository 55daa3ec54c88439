package story

type MoodType string

const (
	MoodHeartbroken MoodType = "heartbroken"
	MoodAngry       MoodType = "angry"
	MoodNostalgic   MoodType = "nostalgic"
	MoodHopeful     MoodType = "hopeful"
	MoodConfused    MoodType = "confused"
	MoodGrateful    MoodType = "grateful"
	MoodRegretful   MoodType = "regretful"
	MoodPeaceful    MoodType = "peaceful"
	MoodBitter      MoodType = "bitter"
	MoodHealing     MoodType = "healing"
)

type Mood struct {
	Type  MoodType `json:"type"`
	Emoji string   `json:"emoji"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

var MoodOptions = []Mood{
	{Type: MoodHeartbroken, Emoji: "💔", Label: "Heartbroken", Color: "#c49484"},
	{Type: MoodAngry, Emoji: "😡", Label: "Angry", Color: "#d4756b"},
	{Type: MoodNostalgic, Emoji: "🌅", Label: "Nostalgic", Color: "#d4a574"},
	{Type: MoodHopeful, Emoji: "🌱", Label: "Hopeful", Color: "#a8c49e"},
	{Type: MoodConfused, Emoji: "😵‍💫", Label: "Confused", Color: "#ab8a6e"},
	{Type: MoodGrateful, Emoji: "🙏", Label: "Grateful", Color: "#8b9f52"},
	{Type: MoodRegretful, Emoji: "😔", Label: "Regretful", Color: "#8b6f52"},
	{Type: MoodPeaceful, Emoji: "☁️", Label: "At Peace", Color: "#9eb4c4"},
	{Type: MoodBitter, Emoji: "🥀", Label: "Bitter", Color: "#7d5a47"},
	{Type: MoodHealing, Emoji: "✨", Label: "Healing", Color: "#b4a8c4"},
}

// LookupMood returns the catalogue entry for t.
func LookupMood(t MoodType) (Mood, bool) {
	for _, m := range MoodOptions {
		if m.Type == t {
			return m, true
		}
	}
	return Mood{}, false
}

// DefaultMood is used when a stored document carries no usable mood.
func DefaultMood() Mood {
	return MoodOptions[0]
}
