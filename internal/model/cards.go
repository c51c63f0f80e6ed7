package model

import "strings"

// Special is a prompt modifier that changes how many response cards a
// turn requires and how many are drawn.
type Special string

const (
	SpecialPick2      Special = "PICK 2"
	SpecialDraw2Pick3 Special = "DRAW 2, PICK 3"
)

// ParseSpecial normalizes the free-form special text stored on a prompt
// card. Unknown or empty text means the prompt has no special.
func ParseSpecial(text string) (Special, bool) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "PICK 2":
		return SpecialPick2, true
	case "DRAW 2 PICK 3", "DRAW 2, PICK 3":
		return SpecialDraw2Pick3, true
	}
	return "", false
}

// ResponsesFor returns how many response cards a prompt with the given
// special text demands from each responder.
func ResponsesFor(specialText string) int {
	special, ok := ParseSpecial(specialText)
	if !ok {
		return 1
	}
	switch special {
	case SpecialPick2:
		return 2
	case SpecialDraw2Pick3:
		return 3
	}
	return 1
}

type PromptCard struct {
	CID     string `json:"cid" bson:"cid"`
	Text    string `json:"text" bson:"text"`
	Special string `json:"special,omitempty" bson:"special,omitempty"`
	Set     string `json:"set" bson:"set"`
	Source  string `json:"source" bson:"source"`
}

type ResponseCard struct {
	CID    string `json:"cid" bson:"cid"`
	Text   string `json:"text" bson:"text"`
	Set    string `json:"set" bson:"set"`
	Source string `json:"source" bson:"source"`
}

type CardSet struct {
	ID              string   `json:"id" bson:"_id"`
	Name            string   `json:"name" bson:"name"`
	Prompts         int      `json:"prompts" bson:"prompts"`
	PromptIndexes   []string `json:"promptIndexes" bson:"promptIndexes"`
	Responses       int      `json:"responses" bson:"responses"`
	ResponseIndexes []string `json:"responseIndexes" bson:"responseIndexes"`
}
