package polls

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

type Repository struct {
	DB *persistence.DB
}

// CreatePoll materializes the poll content as question/answer rows so poll
// progress can be tracked per user.
func (r *Repository) CreatePoll(ctx context.Context, spokID int64, poll *core.PollContent) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		for _, q := range poll.Questions {
			question := core.PollQuestion{
				SpokID:  spokID,
				Rank:    q.Rank,
				Text:    q.Text,
				Type:    q.Type,
				Preview: q.Preview,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}

			for _, a := range q.Answers {
				answer := core.PollAnswer{
					QuestionID: question.ID,
					Rank:       a.Rank,
					Text:       a.Text,
					Type:       a.Type,
					Preview:    a.Preview,
				}
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *Repository) Question(ctx context.Context, id int64) (*core.PollQuestion, error) {
	var question core.PollQuestion
	err := r.DB.WithContext(ctx).First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrQuestionNotFound
		}
		return nil, err
	}
	return &question, nil
}

func (r *Repository) Questions(ctx context.Context, spokID int64) ([]core.PollQuestion, error) {
	var questions []core.PollQuestion
	err := r.DB.WithContext(ctx).
		Where("spok_id = ?", spokID).
		Order("rank asc").
		Find(&questions).Error
	return questions, err
}

func (r *Repository) Answers(ctx context.Context, questionID int64) ([]core.PollAnswer, error) {
	var answers []core.PollAnswer
	err := r.DB.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("rank asc").
		Find(&answers).Error
	return answers, err
}

// RecordAnswer upserts on the (question, user) pair: answering again
// replaces the previous pick instead of failing.
func (r *Repository) RecordAnswer(ctx context.Context, questionID, answerID, userID int64) error {
	record := core.PollUserAnswer{
		QuestionID: questionID,
		AnswerID:   answerID,
		UserID:     userID,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer_id"}),
		}).
		Create(&record).Error
}

func (r *Repository) AnsweredCount(ctx context.Context, spokID, userID int64) (int64, error) {
	var count int64
	err := r.DB.Model(&core.PollUserAnswer{}).
		WithContext(ctx).
		Joins("JOIN poll_questions ON poll_questions.id = poll_user_answers.question_id").
		Where("poll_questions.spok_id = ?", spokID).
		Where("poll_user_answers.user_id = ?", userID).
		Count(&count).Error
	return count, err
}
