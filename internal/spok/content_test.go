package spok_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/spok"
)

func TestValidateContent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content core.Content
		err     error
	}{
		{"unknown type", core.Content{Type: "hologram"}, core.ErrInvalidContentType},
		{"picture", core.Content{Type: core.ContentPicture, File: "img.jpg"}, nil},
		{"picture without file", core.Content{Type: core.ContentPicture}, core.ErrMediaMissing},
		{"video without file", core.Content{Type: core.ContentVideo}, core.ErrMediaMissing},
		{"raw text", textContent("hello"), nil},
		{"empty text", textContent(""), core.ErrTextTooShort},
		{"overlong text", textContent(strings.Repeat("a", 1201)), core.ErrTextTooLong},
		{"url", core.Content{Type: core.ContentURL, URL: &core.URLContent{Address: "https://example.com", Title: "example"}}, nil},
		{"url without title", core.Content{Type: core.ContentURL, URL: &core.URLContent{Address: "https://example.com"}}, core.ErrInvalidURL},
		{"url without payload", core.Content{Type: core.ContentURL}, core.ErrInvalidURL},
		{"poll", pollContent(), nil},
		{"poll without payload", core.Content{Type: core.ContentPoll}, core.ErrInvalidQuestions},
		{
			"riddle",
			core.Content{Type: core.ContentRiddle, Riddle: &core.RiddleContent{
				Title:    "easy one",
				Question: core.RiddlePart{Text: "what has keys but no locks"},
				Answer:   core.RiddlePart{Text: "a piano"},
			}},
			nil,
		},
		{
			"riddle without answer",
			core.Content{Type: core.ContentRiddle, Riddle: &core.RiddleContent{
				Title:    "easy one",
				Question: core.RiddlePart{Text: "what has keys but no locks"},
			}},
			core.ErrInvalidQuestions,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := spok.ValidateContent(tc.content)
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestValidatePoll(t *testing.T) {
	t.Parallel()

	base := func() core.Content { return pollContent() }

	t.Run("title is required", func(t *testing.T) {
		t.Parallel()

		content := base()
		content.Poll.Title = ""
		require.ErrorIs(t, spok.ValidateContent(content), core.ErrInvalidPollTitle)
	})

	t.Run("needs at least one question", func(t *testing.T) {
		t.Parallel()

		content := base()
		content.Poll.Questions = nil
		require.ErrorIs(t, spok.ValidateContent(content), core.ErrInvalidQuestions)
	})

	t.Run("needs at least two answers per question", func(t *testing.T) {
		t.Parallel()

		content := base()
		content.Poll.Questions[0].Answers = content.Poll.Questions[0].Answers[:1]
		require.ErrorIs(t, spok.ValidateContent(content), core.ErrInvalidAnswers)
	})

	t.Run("ranks start at one", func(t *testing.T) {
		t.Parallel()

		content := base()
		content.Poll.Questions[0].Rank = 0
		require.ErrorIs(t, spok.ValidateContent(content), core.ErrInvalidRank)
	})
}

func TestValidateInstanceText(t *testing.T) {
	t.Parallel()

	require.NoError(t, spok.ValidateInstanceText(""))
	require.NoError(t, spok.ValidateInstanceText(strings.Repeat("a", 560)))
	require.ErrorIs(t, spok.ValidateInstanceText(strings.Repeat("a", 561)), core.ErrInstanceTextTooLong)
}
