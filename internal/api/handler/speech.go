package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teampop/popcommerce/internal/service"
)

// SpeechHandler handles the voice widget endpoints.
type SpeechHandler struct {
	speechService *service.SpeechService
}

// NewSpeechHandler creates a new speech handler.
// Parameters:
//   - speechService: transcription and synthesis service.
// Returns:
//   - *SpeechHandler: initialized handler.
func NewSpeechHandler(speechService *service.SpeechService) *SpeechHandler {
	return &SpeechHandler{
		speechService: speechService,
	}
}

// SpeechToText handles POST /stt. Accepts a multipart "file" field with
// the recorded audio and returns the transcribed text.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SpeechHandler) SpeechToText(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Audio file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read audio file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read audio file: " + err.Error(),
		})
		return
	}
	if len(audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Empty audio file",
		})
		return
	}

	text, err := h.speechService.Transcribe(c.Request.Context(), audio)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "STT failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text": text,
	})
}

type ttsRequest struct {
	Text string `json:"text" binding:"required"`
}

// TextToSpeech handles POST /tts and streams back the MP3 audio.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes audio response).
func (h *SpeechHandler) TextToSpeech(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	audio, err := h.speechService.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "TTS failed: " + err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
