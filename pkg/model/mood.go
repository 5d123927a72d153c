package model

import "github.com/m-mizutani/goerr/v2"

var ErrInvalidMoodScore = goerr.New("mood score must be 1-5")

// DateLayout is the calendar date format used for moods and routine logs
const DateLayout = "2006-01-02"

// Mood is one day's self-reported mood. A user has at most one mood per day.
type Mood struct {
	Score int    `json:"score" firestore:"score"`
	Note  string `json:"note" firestore:"note"`
	Date  string `json:"created_at" firestore:"date"`
}

// ValidateMoodScore checks the score is in 1..5
func ValidateMoodScore(score int) error {
	if score < 1 || score > 5 {
		return goerr.Wrap(ErrInvalidMoodScore, "invalid mood score", goerr.V("score", score))
	}
	return nil
}
