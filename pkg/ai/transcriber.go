package ai

import (
	"context"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

// TranscriptResult carries the outcome of a finished transcription job
type TranscriptResult struct {
	ID     string
	Status string
	Text   string
	Error  string
}

// Transcriber submits recordings for transcription and fetches results
type Transcriber interface {
	SubmitFromURL(ctx context.Context, audioURL string) (string, error)
	GetTranscript(ctx context.Context, transcriptID string) (*TranscriptResult, error)
}

// assemblyTranscriber wraps the official AssemblyAI SDK client
type assemblyTranscriber struct {
	client   *aai.Client
	language string
	webhook  string
}

// NewTranscriber creates a transcriber backed by AssemblyAI
func NewTranscriber(cfg *config.AssemblyAIConfig) Transcriber {
	webhook := ""
	if cfg.WebhookBaseURL != "" {
		webhook = cfg.WebhookBaseURL + "/v1/webhooks/transcription"
	}

	var client *aai.Client
	if cfg.BaseURL != "" {
		client = aai.NewClientWithOptions(
			aai.WithAPIKey(cfg.APIKey),
			aai.WithBaseURL(cfg.BaseURL),
		)
	} else {
		client = aai.NewClient(cfg.APIKey)
	}

	return &assemblyTranscriber{
		client:   client,
		language: cfg.Language,
		webhook:  webhook,
	}
}

// SubmitFromURL submits an audio URL for transcription and returns the
// provider job id. It never waits for the transcript: completion arrives
// through the provider webhook or the submitted-job sweep.
func (t *assemblyTranscriber) SubmitFromURL(ctx context.Context, audioURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(t.language),
		SpeakerLabels: aai.Bool(true),
	}
	if t.webhook != "" {
		params.WebhookURL = &t.webhook
	}

	transcript, err := t.client.Transcripts.SubmitFromURL(ctx, audioURL, params)
	if err != nil {
		return "", err
	}
	if transcript.ID == nil {
		return "", fmt.Errorf("transcription provider returned no job id")
	}
	return *transcript.ID, nil
}

// GetTranscript fetches the current state of a transcription job
func (t *assemblyTranscriber) GetTranscript(ctx context.Context, transcriptID string) (*TranscriptResult, error) {
	transcript, err := t.client.Transcripts.Get(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	result := &TranscriptResult{
		ID:     transcriptID,
		Status: string(transcript.Status),
	}
	if transcript.Text != nil {
		result.Text = *transcript.Text
	}
	if transcript.Error != nil {
		result.Error = *transcript.Error
	}
	return result, nil
}
