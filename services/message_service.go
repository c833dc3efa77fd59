package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/gorm"
)

// MessageService manages staff comments on orders
type MessageService struct {
	db      *gorm.DB
	emitter *Emitter
}

// NewMessageService creates a message service bound to db
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db, emitter: NewEmitter()}
}

// ListMessages returns an order's comments, oldest first
func (s *MessageService) ListMessages(ctx context.Context, actor workflow.Actor, orderID uint) ([]models.Message, error) {
	order, err := loadOrder(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, order) {
		return nil, &ForbiddenError{Message: "You do not have permission to view messages on this order"}
	}

	var messages []models.Message
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Preload("Sender").
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

// PostMessage adds a comment and pushes it to everyone working the order
func (s *MessageService) PostMessage(ctx context.Context, actor workflow.Actor, orderID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "is required"}
	}

	var message models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !CanView(actor, order) {
			return &ForbiddenError{Message: "You do not have permission to message on this order"}
		}

		message = models.Message{OrderID: order.ID, SenderID: actor.ID, Text: text}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Preload("Sender").First(&message, message.ID).Error; err != nil {
			return err
		}

		owner, _ := workflow.OwnerRole(order.Status)
		_, err = s.emitter.Emit(tx, Event{
			Type:    EventMessage,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: message,
			Users:   orderRecipients(order),
			Roles:   append([]workflow.AccountType{owner}, adminRoles...),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}
