package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/logger"
)

// SpeechService bridges the voice widget: AssemblyAI for transcription
// and ElevenLabs for synthesis. Both are thin passthroughs; no audio is
// stored server-side.
type SpeechService struct {
	sttClient *resty.Client
	ttsClient *resty.Client
	voiceID   string
	ttsModel  string
}

// NewSpeechService creates a new SpeechService.
// Parameters:
//   - cfg: speech configuration including provider keys and voice id.
// Returns:
//   - *SpeechService: initialized service.
func NewSpeechService(cfg *config.SpeechConfig) *SpeechService {
	stt := resty.New()
	stt.SetBaseURL("https://api.assemblyai.com")
	stt.SetHeader("Authorization", cfg.AssemblyAIKey)
	stt.SetTimeout(2 * time.Minute)

	tts := resty.New()
	tts.SetBaseURL("https://api.elevenlabs.io")
	tts.SetHeader("xi-api-key", cfg.ElevenLabsKey)
	tts.SetHeader("Content-Type", "application/json")
	tts.SetTimeout(60 * time.Second)

	return &SpeechService{
		sttClient: stt,
		ttsClient: tts,
		voiceID:   cfg.VoiceID,
		ttsModel:  cfg.TTSModel,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

// Transcribe uploads the audio and polls until the transcript is done.
// Parameters:
//   - ctx: context bounding the upload and the polling loop.
//   - audio: raw audio bytes (webm/wav/mp3).
// Returns:
//   - string: transcribed text.
//   - error: non-nil on upload, transcription or polling failure.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}

	var uploaded uploadResponse
	resp, err := s.sttClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(audio).
		SetResult(&uploaded).
		Post("/v2/upload")
	if err != nil {
		return "", fmt.Errorf("audio upload failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("audio upload failed: status %d: %s", resp.StatusCode(), resp.String())
	}

	var created transcriptResponse
	resp, err = s.sttClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"audio_url":    uploaded.UploadURL,
			"speech_model": "universal",
		}).
		SetResult(&created).
		Post("/v2/transcript")
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcription request failed: status %d: %s", resp.StatusCode(), resp.String())
	}

	return s.pollTranscript(ctx, created.ID)
}

func (s *SpeechService) pollTranscript(ctx context.Context, id string) (string, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		var tr transcriptResponse
		resp, err := s.sttClient.R().
			SetContext(ctx).
			SetResult(&tr).
			Get("/v2/transcript/" + id)
		if err != nil {
			return "", fmt.Errorf("transcript poll failed: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("transcript poll failed: status %d", resp.StatusCode())
		}

		switch tr.Status {
		case "completed":
			return tr.Text, nil
		case "error":
			return "", fmt.Errorf("transcription failed: %s", tr.Error)
		default:
			logger.CtxDebug(ctx, "Transcript pending: id=%s, status=%s", id, tr.Status)
		}
	}
}

// Synthesize converts text to speech and returns the MP3 bytes.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - text: text to speak.
// Returns:
//   - []byte: audio/mpeg payload.
//   - error: non-nil on provider failure.
func (s *SpeechService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.ttsClient.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/mpeg").
		SetBody(map[string]interface{}{
			"text":     text,
			"model_id": s.ttsModel,
			"voice_settings": map[string]float64{
				"stability":        0.5,
				"similarity_boost": 0.5,
			},
		}).
		Post("/v1/text-to-speech/" + s.voiceID)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("speech synthesis failed: status %d: %s", resp.StatusCode(), resp.String())
	}

	return resp.Body(), nil
}
