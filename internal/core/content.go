package core

import "encoding/json"

type ContentType string

const (
	ContentPicture     ContentType = "picture"
	ContentAnimatedGIF ContentType = "animatedgif"
	ContentVideo       ContentType = "video"
	ContentSound       ContentType = "sound"
	ContentURL         ContentType = "url"
	ContentRawText     ContentType = "rawtext"
	ContentHTMLText    ContentType = "htmltext"
	ContentPoll        ContentType = "poll"
	ContentRiddle      ContentType = "riddle"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentPicture, ContentAnimatedGIF, ContentVideo, ContentSound,
		ContentURL, ContentRawText, ContentHTMLText, ContentPoll, ContentRiddle:
		return true
	}
	return false
}

// Media reports whether the type requires an uploaded file.
func (t ContentType) Media() bool {
	switch t {
	case ContentPicture, ContentAnimatedGIF, ContentVideo, ContentSound:
		return true
	}
	return false
}

// Content is the tagged union carried by a spok. Only the fields relevant to
// the declared Type are set; the union is stored as JSON on the spok row.
type Content struct {
	Type ContentType `json:"type"`

	// Media types.
	File       string `json:"file,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	FullURL    string `json:"full_url,omitempty"`

	// rawtext / htmltext.
	Text string `json:"text,omitempty"`

	URL    *URLContent    `json:"url,omitempty"`
	Poll   *PollContent   `json:"poll,omitempty"`
	Riddle *RiddleContent `json:"riddle,omitempty"`
}

type URLContent struct {
	Address string `json:"address"`
	Title   string `json:"title"`
	Text    string `json:"text,omitempty"`
	Preview string `json:"preview,omitempty"`
	Type    string `json:"type,omitempty"`
}

type PollContent struct {
	Title       string             `json:"title"`
	Description string             `json:"desc,omitempty"`
	Questions   []PollQuestionSpec `json:"questions"`
}

type PollQuestionSpec struct {
	Text    string           `json:"text"`
	Type    string           `json:"type,omitempty"`
	Preview string           `json:"preview,omitempty"`
	Rank    int              `json:"rank"`
	Answers []PollAnswerSpec `json:"answers"`
}

type PollAnswerSpec struct {
	Text    string `json:"text"`
	Type    string `json:"type,omitempty"`
	Preview string `json:"preview,omitempty"`
	Rank    int    `json:"rank"`
}

type RiddleContent struct {
	Title    string     `json:"title"`
	Question RiddlePart `json:"question"`
	Answer   RiddlePart `json:"answer"`
}

type RiddlePart struct {
	Text    string `json:"text"`
	Type    string `json:"type,omitempty"`
	Preview string `json:"preview,omitempty"`
}

func (c Content) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func UnmarshalContent(raw []byte) (Content, error) {
	var c Content
	err := json.Unmarshal(raw, &c)
	return c, err
}
