package handlers

import (
	"context"
	"time"

	"github.com/zatekoja/trainingportal/internal/application/listing"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

const (
	MsgNoProgramsFound  = "No training programs found."
	MsgNotEnrolledYet   = "You are not enrolled in any training programs yet."
	MsgNoProgramsYet    = "You have not created any training programs."
	MsgNoTraineesYet    = "No trainees registered yet."
	MsgNoFeedbackYet    = "No feedback yet."
	justNowLabel        = "Just now"
	submittedAtLayout   = "Jan 2, 2006 3:04 PM MST"
	programDetailPrefix = "/programs/"
)

// ProgramCard is the summary shown in program grids
type ProgramCard struct {
	ID           string                    `json:"id"`
	TrainingArea string                    `json:"trainingArea"`
	TrainerName  string                    `json:"trainerName"`
	Schedule     time.Time                 `json:"schedule"`
	Venue        string                    `json:"venue"`
	Href         string                    `json:"href"`
	Enroll       *services.EnrollmentState `json:"enroll,omitempty"`
}

// ProgramListing is a searched and paged grid of cards
type ProgramListing struct {
	Query        string        `json:"query"`
	Cards        []ProgramCard `json:"cards"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	PageButtons  []int         `json:"pageButtons"`
	EmptyMessage string        `json:"emptyMessage,omitempty"`
}

// ProgramDetail is the program page
type ProgramDetail struct {
	ID              string    `json:"id"`
	TrainingArea    string    `json:"trainingArea"`
	TrainerID       string    `json:"trainerId"`
	TrainerName     string    `json:"trainerName"`
	Schedule        time.Time `json:"schedule"`
	Venue           string    `json:"venue"`
	Prerequisites   string    `json:"prerequisites"`
	CreatedAt       time.Time `json:"createdAt"`
	RegisteredCount int       `json:"registeredCount"`
}

// FeedbackView is one feedback entry as displayed
type FeedbackView struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	Username         string            `json:"username"`
	UserType         entities.UserType `json:"userType"`
	Comment          string            `json:"comment"`
	Rating           int               `json:"rating"`
	SubmittedAt      *time.Time        `json:"submittedAt"`
	SubmittedAtLabel string            `json:"submittedAtLabel"`
	FromTrainer      bool              `json:"fromTrainer"`
}

// FeedbackList is the feedback section of the program page
type FeedbackList struct {
	Feedback     []FeedbackView `json:"feedback"`
	EmptyMessage string         `json:"emptyMessage,omitempty"`
}

type enrollmentStater interface {
	States(ctx context.Context, user *entities.User, trainingIDs []string) (map[string]*services.EnrollmentState, error)
}

func newProgramCard(program *entities.TrainingProgram) ProgramCard {
	return ProgramCard{
		ID:           program.ID,
		TrainingArea: program.TrainingArea,
		TrainerName:  program.TrainerName,
		Schedule:     program.Schedule,
		Venue:        program.Venue,
		Href:         programDetailPrefix + program.ID,
	}
}

// newProgramListing renders a page of programs. Enroll state for the
// signed-in caller is resolved for the whole page at once; a failed lookup
// leaves the cards without it.
func newProgramListing(ctx context.Context, query string, page listing.Page[*entities.TrainingProgram], enrollment enrollmentStater, user *entities.User) ProgramListing {
	var states map[string]*services.EnrollmentState
	if enrollment != nil && user != nil && len(page.Items) > 0 {
		ids := make([]string, 0, len(page.Items))
		for _, program := range page.Items {
			ids = append(ids, program.ID)
		}
		var err error
		states, err = enrollment.States(ctx, user, ids)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to load enroll state")
		}
	}

	cards := make([]ProgramCard, 0, len(page.Items))
	for _, program := range page.Items {
		card := newProgramCard(program)
		if state, ok := states[program.ID]; ok && state.CanEnroll {
			card.Enroll = state
		}
		cards = append(cards, card)
	}

	view := ProgramListing{
		Query:       query,
		Cards:       cards,
		Page:        page.Page,
		TotalPages:  page.TotalPages,
		PageButtons: page.PageButtons,
	}
	if view.PageButtons == nil {
		view.PageButtons = []int{}
	}
	if len(cards) == 0 {
		view.EmptyMessage = MsgNoProgramsFound
	}
	return view
}

func newProgramDetail(program *entities.TrainingProgram) ProgramDetail {
	return ProgramDetail{
		ID:              program.ID,
		TrainingArea:    program.TrainingArea,
		TrainerID:       program.TrainerID,
		TrainerName:     program.TrainerName,
		Schedule:        program.Schedule,
		Venue:           program.Venue,
		Prerequisites:   program.PrerequisitesOrDefault(),
		CreatedAt:       program.CreatedAt,
		RegisteredCount: len(program.RegisteredUsers),
	}
}

func newFeedbackView(entry *entities.Feedback) FeedbackView {
	view := FeedbackView{
		ID:               entry.ID,
		UserID:           entry.UserID,
		Username:         entry.Username,
		UserType:         entry.UserType,
		Comment:          entry.Comment,
		Rating:           entry.Rating,
		SubmittedAtLabel: justNowLabel,
		FromTrainer:      entry.FromTrainer(),
	}
	if !entry.SubmittedAt.IsZero() {
		submitted := entry.SubmittedAt
		view.SubmittedAt = &submitted
		view.SubmittedAtLabel = submitted.UTC().Format(submittedAtLayout)
	}
	return view
}

func newFeedbackList(entries []*entities.Feedback) FeedbackList {
	views := make([]FeedbackView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, newFeedbackView(entry))
	}
	list := FeedbackList{Feedback: views}
	if len(views) == 0 {
		list.EmptyMessage = MsgNoFeedbackYet
	}
	return list
}
