package entities

import (
	"time"
)

// NoPrerequisitesText is shown when a program lists no prerequisites.
const NoPrerequisitesText = "No prerequisites provided."

// TrainingProgram is a scheduled training session.
//
// TrainerName is a snapshot of the trainer's username taken when the program
// was created. It is never refreshed if the trainer later changes their name.
type TrainingProgram struct {
	ID              string    `json:"id"`
	TrainingArea    string    `json:"trainingArea"`
	TrainerID       string    `json:"trainerId"`
	TrainerName     string    `json:"trainerName"`
	Schedule        time.Time `json:"schedule"`
	Venue           string    `json:"venue"`
	Prerequisites   string    `json:"prerequisites"`
	CreatedAt       time.Time `json:"createdAt"`
	RegisteredUsers []string  `json:"registeredUsers"`
	Feedback        []string  `json:"feedback"`
}

// PrerequisitesOrDefault returns the prerequisites or the fallback text.
func (p *TrainingProgram) PrerequisitesOrDefault() string {
	if p.Prerequisites == "" {
		return NoPrerequisitesText
	}
	return p.Prerequisites
}

// IsUpcoming reports whether the program is scheduled after now.
func (p *TrainingProgram) IsUpcoming(now time.Time) bool {
	return p.Schedule.After(now)
}

// Registration records that a trainee enrolled in a program.
type Registration struct {
	ID           string    `json:"id" db:"id"`
	TraineeID    string    `json:"traineeId" db:"trainee_id"`
	TrainingID   string    `json:"trainingId" db:"training_id"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}
