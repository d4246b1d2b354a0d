package models

import "encoding/json"

// UserStats tracks a user's lifetime quiz results
type UserStats struct {
	Correct    int `json:"correct" db:"correct_count"`
	Wrong      int `json:"wrong" db:"wrong_count"`
	Streak     int `json:"streak" db:"streak"`
	BestStreak int `json:"bestStreak" db:"best_streak"`
	TotalWords int `json:"totalWords" db:"-"` // Informational, recomputed from the word count
}

// Apply records a single answer
func (s *UserStats) Apply(isCorrect bool) {
	if isCorrect {
		s.Correct++
		s.Streak++
		if s.Streak > s.BestStreak {
			s.BestStreak = s.Streak
		}
		return
	}
	s.Wrong++
	s.Streak = 0
}

// UnmarshalJSON accepts both bestStreak and best_streak, the word service has sent either.
func (s *UserStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Correct       int  `json:"correct"`
		Wrong         int  `json:"wrong"`
		Streak        int  `json:"streak"`
		BestStreak    *int `json:"bestStreak"`
		BestStreakOld *int `json:"best_streak"`
		TotalWords    int  `json:"totalWords"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Correct = raw.Correct
	s.Wrong = raw.Wrong
	s.Streak = raw.Streak
	s.TotalWords = raw.TotalWords
	s.BestStreak = 0
	if raw.BestStreak != nil {
		s.BestStreak = *raw.BestStreak
	} else if raw.BestStreakOld != nil {
		s.BestStreak = *raw.BestStreakOld
	}
	return nil
}
