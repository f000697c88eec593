package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"

	"deelaw-backend/models"
	"deelaw-backend/repository"
	"deelaw-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("message or audio required")
	ErrProcessingFailed = errors.New("failed to process message")
)

// systemInstruction is the fixed persona sent with every completion request.
const systemInstruction = "You are a legal AI assistant."

// CompletionClient turns a prompt into assistant reply text.
type CompletionClient interface {
	Complete(ctx context.Context, system string, turns []string) (string, error)
}

// TranscriptionClient turns raw audio bytes into text.
type TranscriptionClient interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// QuotaLedger mutates a user's token counters.
type QuotaLedger interface {
	Decrement(ctx context.Context, user *models.User, kind models.TokenKind, amount int) error
}

// ChatService orchestrates one chat exchange: validate input, optionally
// transcribe audio, call the completion provider, persist both turns, and
// charge the word quota.
type ChatService struct {
	messages     repository.MessageStore
	ledger       QuotaLedger
	completion   CompletionClient
	transcriber  TranscriptionClient
	audioStorage storage.Storage
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithMessageStore sets the message store
func ChatWithMessageStore(messages repository.MessageStore) ChatServiceOption {
	return func(s *ChatService) {
		s.messages = messages
	}
}

// ChatWithQuotaLedger sets the quota ledger
func ChatWithQuotaLedger(ledger QuotaLedger) ChatServiceOption {
	return func(s *ChatService) {
		s.ledger = ledger
	}
}

// ChatWithCompletionClient sets the completion provider
func ChatWithCompletionClient(client CompletionClient) ChatServiceOption {
	return func(s *ChatService) {
		s.completion = client
	}
}

// ChatWithTranscriptionClient sets the transcription provider
func ChatWithTranscriptionClient(client TranscriptionClient) ChatServiceOption {
	return func(s *ChatService) {
		s.transcriber = client
	}
}

// ChatWithAudioStorage sets the audio artifact storage
func ChatWithAudioStorage(store storage.Storage) ChatServiceOption {
	return func(s *ChatService) {
		s.audioStorage = store
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendMessageRequest represents one human input: text, optionally with at
// most one attached audio clip.
type SendMessageRequest struct {
	Message       string
	Audio         []byte
	AudioMimeType string
	AudioFilename string
}

// SendMessageResult represents a completed exchange
type SendMessageResult struct {
	Reply      string
	TokensUsed int
	AudioURL   *string
}

// SendMessage runs a single exchange. The user-turn message is persisted
// before the completion call; if the completion provider fails, that row
// stays and no quota is charged. Transcription failures degrade rather than
// abort: the exchange continues with whatever text is available.
func (s *ChatService) SendMessage(ctx context.Context, user *models.User, req SendMessageRequest) (*SendMessageResult, error) {
	if s.messages == nil {
		return nil, errors.New("message store not set")
	}
	if s.ledger == nil {
		return nil, errors.New("quota ledger not set")
	}
	if s.completion == nil {
		return nil, errors.New("completion client not set")
	}

	text := strings.TrimSpace(req.Message)
	if text == "" && len(req.Audio) == 0 {
		return nil, ErrInvalidInput
	}

	var audioURL *string
	var transcript string
	if len(req.Audio) > 0 {
		audioURL = s.storeAudio(ctx, req)

		if s.transcriber == nil {
			log.Printf("Warning: audio attached but no transcription client configured")
		} else {
			t, err := s.transcriber.Transcribe(ctx, req.Audio, req.AudioMimeType)
			if err != nil {
				// Degrade, don't fail: continue with whatever text we have.
				log.Printf("Warning: transcription failed for user %s: %v", user.ID, err)
			} else {
				transcript = strings.TrimSpace(t)
			}
		}
	}

	content := text
	if content == "" {
		content = transcript
	}
	if content == "" {
		// Audio-only submission whose transcription produced nothing leaves
		// no text to send; rejected before any message is written.
		return nil, ErrInvalidInput
	}

	userMessage := &models.ChatMessage{
		UserID:   user.ID,
		Content:  content,
		IsUser:   true,
		AudioURL: audioURL,
	}
	if err := s.messages.Create(ctx, userMessage); err != nil {
		return nil, err
	}

	turns := []string{content}
	if text != "" && transcript != "" {
		turns = append(turns, transcript)
	}

	reply, err := s.completion.Complete(ctx, systemInstruction, turns)
	if err != nil {
		// The user-turn row is deliberately kept; no quota is charged.
		log.Printf("ChatService.SendMessage completion error for user %s: %v", user.ID, err)
		return nil, ErrProcessingFailed
	}

	assistantMessage := &models.ChatMessage{
		UserID:  user.ID,
		Content: reply,
		IsUser:  false,
	}
	if err := s.messages.Create(ctx, assistantMessage); err != nil {
		log.Printf("ChatService.SendMessage failed to persist reply for user %s: %v", user.ID, err)
		return nil, ErrProcessingFailed
	}

	// The charge covers the typed input only, never the completion output.
	consumed := wordCount(text)
	if err := s.ledger.Decrement(ctx, user, models.TokenKindWords, consumed); err != nil {
		log.Printf("ChatService.SendMessage failed to charge quota for user %s: %v", user.ID, err)
		return nil, ErrProcessingFailed
	}

	return &SendMessageResult{
		Reply:      reply,
		TokensUsed: consumed,
		AudioURL:   audioURL,
	}, nil
}

// Transcribe converts an audio clip to text without running an exchange.
func (s *ChatService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if s.transcriber == nil {
		return "", errors.New("transcription client not set")
	}
	if len(audio) == 0 {
		return "", ErrInvalidInput
	}
	return s.transcriber.Transcribe(ctx, audio, mimeType)
}

// History returns the user's messages in creation order.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error) {
	if s.messages == nil {
		return nil, errors.New("message store not set")
	}
	return s.messages.ListByUserID(ctx, userID)
}

// storeAudio uploads the raw clip and returns its public URL. Storage trouble
// never blocks the exchange.
func (s *ChatService) storeAudio(ctx context.Context, req SendMessageRequest) *string {
	if s.audioStorage == nil {
		return nil
	}

	filename := req.AudioFilename
	if filename == "" {
		filename = "recording.wav"
	}

	storagePath, err := s.audioStorage.Upload(ctx, uuid.New(), filename, bytes.NewReader(req.Audio))
	if err != nil {
		log.Printf("Warning: failed to store audio artifact: %v", err)
		return nil
	}

	url := s.audioStorage.URL(storagePath)
	return &url
}

// wordCount returns the whitespace-delimited token count of s.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
