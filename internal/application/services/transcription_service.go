package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// TranscriptionService turns an uploaded voice memo into a note by
// running it through Assembly AI and saving the transcript as a
// single-paragraph note.
type TranscriptionService struct {
	collections *CollectionService
	stats       *StatsService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(collections *CollectionService, stats *StatsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TranscriptionService {
	return &TranscriptionService{
		collections: collections,
		stats:       stats,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Enabled reports whether an Assembly AI key is configured.
func (s *TranscriptionService) Enabled() bool {
	return config.AAIAPIKey != ""
}

// TranscribeVoiceMemo uploads the audio, waits for the transcript, and
// saves it as a new note titled from the first words when no title is
// given.
func (s *TranscriptionService) TranscribeVoiceMemo(ctx context.Context, sess *session.Context, audio io.Reader, title string) (*study.Note, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("transcription is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	// The marker completes itself with an error if the upload runs into
	// the deadline.
	marker := s.perfTracker.StartOperationWithContext(ctx, "transcription:voice_memo", sess.UserID)
	defer marker.Complete()

	client := assemblyai.NewClient(config.AAIAPIKey)

	transcript, err := client.Transcripts.TranscribeFromReader(ctx, audio, nil)
	if err != nil {
		marker.SetError(err)
		s.logger.Media().Error("Transcription failed", "userId", sess.UserID, "error", err.Error())
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	text := ""
	if transcript.Text != nil {
		text = strings.TrimSpace(*transcript.Text)
	}
	if text == "" {
		marker.SetError(fmt.Errorf("empty transcript"))
		return nil, fmt.Errorf("no speech detected in recording")
	}

	if title == "" {
		title = deriveTitle(text)
	}

	now := time.Now().UTC()
	note := &study.Note{
		ID:     security.GenerateULID(),
		UserID: sess.UserID,
		Title:  title,
		Blocks: []study.Block{
			{ID: security.GenerateULID(), Type: "paragraph", Text: text},
		},
		Tags:         []string{"voice-memo"},
		LastModified: now,
	}

	if err := s.collections.SaveNote(ctx, sess, note); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if _, err := s.stats.RecordNoteCreated(ctx, sess); err != nil {
		s.logger.Stats().Warn("Failed to record note stat after transcription", "userId", sess.UserID, "error", err.Error())
	}

	s.logger.Media().Info("Voice memo transcribed", "userId", sess.UserID, "noteId", note.ID, "chars", len(text))
	marker.SetSuccess(true)
	return note, nil
}

// deriveTitle takes the first few words of the transcript as a title.
func deriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > 8 {
		words = words[:8]
	}
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) > 60 {
		runes := []rune(title)
		title = string(runes[:60])
	}
	return title
}
