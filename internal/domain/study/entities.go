// Package study defines the entity records persisted for each user:
// preferences, stats, notes, summaries, queue items, routine tasks, and
// quizzes. All are plain records; behavior lives in the service layer.
package study

import "time"

// UserPreferences is the identity and onboarding profile for one user.
// Created at signup or guest-session creation, mutated via profile edits,
// never deleted.
type UserPreferences struct {
	ID          string    `json:"id"`
	Guest       bool      `json:"guest"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	FreeTime    string    `json:"freeTime"`    // e.g. "evenings", "weekends"
	EnergyLevel string    `json:"energyLevel"` // e.g. "morning", "night"
	Goal        string    `json:"goal"`
	Distraction string    `json:"distraction"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DefaultGuestPreferences returns the fixed defaults a fresh guest starts with.
func DefaultGuestPreferences(id, displayName string) *UserPreferences {
	return &UserPreferences{
		ID:          id,
		Guest:       true,
		DisplayName: displayName,
		FreeTime:    "evenings",
		EnergyLevel: "balanced",
		Goal:        "steady-progress",
		Distraction: "medium",
		CreatedAt:   time.Now().UTC(),
	}
}

// UserStats is the single per-user statistics record. At most one exists
// per user id; it is created lazily on first access.
type UserStats struct {
	UserID        string         `json:"userId"`
	StudyMinutes  int            `json:"studyMinutes"`
	NotesCreated  int            `json:"notesCreated"`
	QuizzesTaken  int            `json:"quizzesTaken"`
	LoginStreak   int            `json:"loginStreak"`
	LastLoginDate time.Time      `json:"lastLoginDate"`
	DailyActivity map[string]int `json:"dailyActivity"` // ISO date -> minutes studied
	HighScore     int            `json:"highScore"`
}

// NewUserStats returns a zeroed stats record for lazy creation.
func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:        userID,
		LastLoginDate: time.Now().UTC(),
		DailyActivity: make(map[string]int),
	}
}

// Block is one element of a note's structured document.
type Block struct {
	ID    string `json:"id"`
	Type  string `json:"type"` // "paragraph", "heading", "list-item", "code"
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
}

// CanvasElement is one positioned rectangle on a note's infinite canvas.
type CanvasElement struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"` // "text", "image", "rect"
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Text     string  `json:"text,omitempty"`
	Color    string  `json:"color,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Z        int     `json:"z,omitempty"`
}

// Note carries either a structured document, a canvas, or both. Content is
// the legacy plain-text fallback from before blocks existed.
type Note struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	Blocks       []Block         `json:"blocks,omitempty"`
	Canvas       []CanvasElement `json:"canvas,omitempty"`
	Content      string          `json:"content,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Folder       string          `json:"folder,omitempty"`
	LastModified time.Time       `json:"lastModified"`
	Public       bool            `json:"public"`
	ShareToken   string          `json:"shareToken,omitempty"`
}

// Summary is generated study material derived from a note.
type Summary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	NoteID    string    `json:"noteId,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// QueueItem is an entry in the study queue.
type QueueItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoutineTask is a recurring study task.
type RoutineTask struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	TimeOfDay string    `json:"timeOfDay,omitempty"` // "HH:MM"
	Days      []string  `json:"days,omitempty"`      // "mon".."sun"
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"` // index into Choices
}

// Quiz is a generated flashcard/quiz deck with its latest result.
type Quiz struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
	Score     int            `json:"score,omitempty"`
	TakenAt   *time.Time     `json:"takenAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
