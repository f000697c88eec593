package handlers

import (
	"errors"
	"io"
	"net/http"

	"deelaw-backend/auth"
	"deelaw-backend/service"

	"github.com/gin-gonic/gin"
)

// maxAudioSize caps uploaded voice clips at 15MB.
const maxAudioSize = 15 * 1024 * 1024

// ChatHandler handles HTTP requests for the chat exchange flow
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage handles POST /api/chat/send. The body is multipart: a required
// "message" text field plus an optional "audio" clip.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Authentication required",
			},
		})
		return
	}

	message := c.PostForm("message")

	var audio []byte
	var audioMime, audioName string
	if fileHeader, err := c.FormFile("audio"); err == nil {
		if fileHeader.Size > maxAudioSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUDIO_TOO_LARGE",
					"message": "Audio clip exceeds the maximum size",
				},
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUDIO_READ_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		defer file.Close()

		audio, err = io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUDIO_READ_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		audioMime = fileHeader.Header.Get("Content-Type")
		audioName = fileHeader.Filename
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), user, service.SendMessageRequest{
		Message:       message,
		Audio:         audio,
		AudioMimeType: audioMime,
		AudioFilename: audioName,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_INPUT",
					"message": "Message text or an audio clip is required",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROCESSING_FAILED",
				"message": "An error occurred while processing your request.",
			},
		})
		return
	}

	response := gin.H{
		"message":    result.Reply,
		"tokensUsed": result.TokensUsed,
	}
	if result.AudioURL != nil {
		response["audioUrl"] = *result.AudioURL
	}

	c.JSON(http.StatusOK, response)
}

// Transcribe handles POST /api/chat/transcribe
func (h *ChatHandler) Transcribe(c *gin.Context) {
	if _, ok := auth.CurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Authentication required",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_AUDIO",
				"message": "Audio file is required",
			},
		})
		return
	}

	if fileHeader.Size > maxAudioSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUDIO_TOO_LARGE",
				"message": "Audio clip exceeds the maximum size",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUDIO_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUDIO_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	text, err := h.chatService.Transcribe(c.Request.Context(), audio, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TRANSCRIPTION_FAILED",
				"message": "Failed to transcribe audio",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// History handles GET /api/chat/history
func (h *ChatHandler) History(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Authentication required",
			},
		})
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HISTORY_FAILED",
				"message": "Failed to load chat history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
