package entities

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is an immutable rating and comment left on a training program.
// Username and UserType are copied from the author's profile at write time.
type Feedback struct {
	ID          string    `json:"id" db:"id"`
	TrainingID  string    `json:"trainingId" db:"training_id"`
	UserID      string    `json:"userId" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	UserType    UserType  `json:"userType" db:"user_type"`
	Comment     string    `json:"comment" db:"comment"`
	Rating      int       `json:"rating" db:"rating"`
	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
}

// FromTrainer reports whether the entry was written by a trainer.
func (f *Feedback) FromTrainer() bool {
	return f.UserType == UserTypeTrainer
}
