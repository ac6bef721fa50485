package spok

import (
	"unicode/utf8"

	"spokd/internal/core"
)

const (
	minTextLen = 1
	maxTextLen = 1200

	minTitleLen = 1
	maxTitleLen = 120

	maxInstanceTextLen = 560

	minQuestions       = 1
	maxQuestions       = 20
	minAnswersPerQuest = 2
	maxAnswersPerQuest = 10
)

// ValidateContent checks the payload required by the declared content type,
// ignoring fields belonging to other branches of the union.
func ValidateContent(c core.Content) error {
	if !c.Type.Valid() {
		return core.ErrInvalidContentType
	}

	switch {
	case c.Type.Media():
		if c.File == "" {
			return core.ErrMediaMissing
		}

	case c.Type == core.ContentRawText || c.Type == core.ContentHTMLText:
		return boundedText(c.Text, minTextLen, maxTextLen)

	case c.Type == core.ContentURL:
		if c.URL == nil || c.URL.Address == "" || c.URL.Title == "" {
			return core.ErrInvalidURL
		}

	case c.Type == core.ContentPoll:
		return validatePoll(c.Poll)

	case c.Type == core.ContentRiddle:
		if c.Riddle == nil || c.Riddle.Question.Text == "" || c.Riddle.Answer.Text == "" {
			return core.ErrInvalidQuestions
		}
		return boundedTitle(c.Riddle.Title)
	}

	return nil
}

func validatePoll(poll *core.PollContent) error {
	if poll == nil {
		return core.ErrInvalidQuestions
	}
	if err := boundedTitle(poll.Title); err != nil {
		return core.ErrInvalidPollTitle
	}
	if len(poll.Questions) < minQuestions || len(poll.Questions) > maxQuestions {
		return core.ErrInvalidQuestions
	}

	for _, q := range poll.Questions {
		if q.Text == "" {
			return core.ErrInvalidQuestions
		}
		if q.Rank < 1 {
			return core.ErrInvalidRank
		}
		if len(q.Answers) < minAnswersPerQuest || len(q.Answers) > maxAnswersPerQuest {
			return core.ErrInvalidAnswers
		}
		for _, a := range q.Answers {
			if a.Text == "" {
				return core.ErrInvalidAnswers
			}
			if a.Rank < 1 {
				return core.ErrInvalidRank
			}
		}
	}
	return nil
}

// ValidateInstanceText bounds the per-instance text added on create/respoke.
func ValidateInstanceText(text string) error {
	if utf8.RuneCountInString(text) > maxInstanceTextLen {
		return core.ErrInstanceTextTooLong
	}
	return nil
}

func boundedText(text string, min, max int) error {
	n := utf8.RuneCountInString(text)
	if n < min {
		return core.ErrTextTooShort
	}
	if n > max {
		return core.ErrTextTooLong
	}
	return nil
}

func boundedTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < minTitleLen {
		return core.ErrTitleTooShort
	}
	if n > maxTitleLen {
		return core.ErrTitleTooLong
	}
	return nil
}
