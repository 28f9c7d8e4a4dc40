package api

import (
	"errors"                        // Error inspection
	"landestate/internal/domain"    // Importing domain models
	"landestate/internal/messaging" // Conversations and messages
	"net/http"                      // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// SendMessageRequest is the body of a new message
type SendMessageRequest struct {
	ReceiverType string `json:"receiverType" binding:"required,oneof=user employee"`
	ReceiverID   uint   `json:"receiverId" binding:"required"`
	Content      string `json:"content" binding:"required"`
}

// messagingError maps messaging sentinel errors to HTTP statuses
func messagingError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, messaging.ErrEmptyContent),
		errors.Is(err, messaging.ErrContentTooLong),
		errors.Is(err, messaging.ErrSelfMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, messaging.ErrNotAllowed),
		errors.Is(err, messaging.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, messaging.ErrParticipantNotFound),
		errors.Is(err, messaging.ErrConversationNotFound),
		errors.Is(err, messaging.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		serverError(c, message, err, nil)
	}
}

// ContactsHandler lists who the principal may message
func ContactsHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		contacts, err := msgs.Contacts(c.Request.Context(), p)
		if err != nil {
			messagingError(c, "Failed to load contacts", err)
			return
		}
		c.JSON(http.StatusOK, contacts)
	}
}

// ConversationsHandler lists the principal's conversations, newest first
func ConversationsHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		summaries, err := msgs.Conversations(c.Request.Context(), p)
		if err != nil {
			messagingError(c, "Failed to load conversations", err)
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}

// ConversationMessagesHandler returns a conversation's messages and marks incoming ones read
func ConversationMessagesHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		conversationID, ok := paramID(c, "conversationId")
		if !ok {
			return
		}
		messages, err := msgs.Messages(c.Request.Context(), p, conversationID)
		if err != nil {
			messagingError(c, "Failed to load messages", err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

// MessagesWithHandler returns the messages exchanged with one counterpart
func MessagesWithHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		kind, err := domain.ParseParticipantKind(c.Param("type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Participant type must be user or employee"})
			return
		}
		otherID, ok := paramID(c, "id")
		if !ok {
			return
		}
		messages, err := msgs.MessagesWith(c.Request.Context(), p, domain.Participant{Kind: kind, ID: otherID})
		if err != nil {
			messagingError(c, "Failed to load messages", err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

// UnreadCountHandler returns the principal's unread message count
func UnreadCountHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		count, err := msgs.UnreadCount(c.Request.Context(), p)
		if err != nil {
			messagingError(c, "Failed to count messages", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// SendMessageHandler sends a message, opening the conversation on first contact
func SendMessageHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		var req SendMessageRequest
		if !bindJSON(c, &req) {
			return
		}
		to := domain.Participant{Kind: domain.ParticipantKind(req.ReceiverType), ID: req.ReceiverID}
		msg, err := msgs.Send(c.Request.Context(), p, to, req.Content)
		if err != nil {
			messagingError(c, "Failed to send message", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"message_id":      msg.ID,
			"conversation_id": msg.ConversationID,
		}).Debug("Message sent")
		c.JSON(http.StatusCreated, msg)
	}
}

// MarkReadHandler marks one incoming message read
func MarkReadHandler(msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		messageID, ok := paramID(c, "messageId")
		if !ok {
			return
		}
		msg, err := msgs.MarkRead(c.Request.Context(), p, messageID)
		if err != nil {
			messagingError(c, "Failed to update message", err)
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}
