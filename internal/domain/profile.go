package domain

import (
	"time"
)

// WorkExperience and Education both model an open-ended interval: when
// Current is set EndDate must be nil. The schema does not enforce this,
// the profile service rejects writes that violate it.

type WorkExperience struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description *string    `json:"description,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current"`
}

type Education struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	School    string     `json:"school"`
	Degree    *string    `json:"degree,omitempty"`
	Field     *string    `json:"field,omitempty"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Current   bool       `json:"current"`
}

type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserSkill struct {
	UserID       int64 `json:"user_id"`
	SkillID      int64 `json:"skill_id"`
	Endorsements int   `json:"endorsements"`
	// Joined field
	SkillName string `json:"skill_name,omitempty"`
}
