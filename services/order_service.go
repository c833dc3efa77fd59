package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderService owns every mutation of an order. Each mutation runs in one
// transaction that compares and bumps the order version, writes the audit
// log and records outbox events.
type OrderService struct {
	db      *gorm.DB
	emitter *Emitter
	cache   IdempotencyCache
}

// NewOrderService creates an order service bound to db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		db:      db,
		emitter: NewEmitter(),
		cache:   GetIdempotencyCache(),
	}
}

// CreateOrderInput carries the fields accepted when an order is created
type CreateOrderInput struct {
	CustomerID    uint
	Requirements  string
	Dimensions    string
	QueuePosition int
	AssignedToID  *uint
}

// UpdateOrderInput carries optional field changes. Version, when set, must
// match the stored version.
type UpdateOrderInput struct {
	CustomerID    *uint
	Requirements  *string
	Dimensions    *string
	QueuePosition *int
	Version       *uint
}

// OrderFilter narrows ListOrders
type OrderFilter struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// ChangeStatusInput requests a status transition
type ChangeStatusInput struct {
	OrderID   uint
	Status    string
	Note      string
	RequestID string
}

// AssignInput requests an assignment. RequiredRole pins the role expected
// by stage-specific endpoints.
type AssignInput struct {
	OrderID      uint
	UserID       uint
	RequiredRole workflow.AccountType
	RequestID    string
}

// QueueEntry positions one order in the work queue
type QueueEntry struct {
	OrderID  uint `json:"orderId" binding:"required"`
	Position int  `json:"position" binding:"gte=0"`
}

func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// casUpdate applies updates only if the order still has the version we read,
// bumping the version. Zero rows affected means someone else got there first.
func casUpdate(tx *gorm.DB, order *models.Order, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")
	res := tx.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ConflictError{Message: fmt.Sprintf("order %s was modified concurrently, reload and try again", order.OrderNumber)}
	}
	order.Version++
	return nil
}

func loadOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, id).Error; err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	return &order, nil
}

func writeLog(tx *gorm.DB, entry *models.OrderLog) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write order log: %w", err)
	}
	return nil
}

func actorRef(actor workflow.Actor) *uint {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}

func orderRecipients(order *models.Order) []uint {
	if order.AssignedToID == nil {
		return nil
	}
	return []uint{*order.AssignedToID}
}

// CreateOrder creates an order in the initial status
func (s *OrderService) CreateOrder(ctx context.Context, actor workflow.Actor, in CreateOrderInput) (*models.Order, error) {
	var created *models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			return notFoundOr(err, "customer", in.CustomerID)
		}

		order := &models.Order{
			OrderNumber:   generateOrderNumber(),
			Status:        workflow.InitialStatus,
			Version:       1,
			CustomerID:    customer.ID,
			Requirements:  strings.TrimSpace(in.Requirements),
			Dimensions:    strings.TrimSpace(in.Dimensions),
			QueuePosition: in.QueuePosition,
			CreatedByID:   actor.ID,
		}

		var assignee *models.User
		if in.AssignedToID != nil {
			user, err := s.assignableUser(tx, order.Status, *in.AssignedToID, "")
			if err != nil {
				return err
			}
			assignee = user
			order.AssignedToID = &user.ID
		}

		if err := tx.Create(order).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Message: "order number collision, please retry", Cause: err}
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := writeLog(tx, &models.OrderLog{
			OrderID:  order.ID,
			Action:   models.LogActionCreated,
			ToStatus: order.Status,
			ActorID:  actorRef(actor),
			Message:  fmt.Sprintf("Order %s created", order.OrderNumber),
		}); err != nil {
			return err
		}

		owner, _ := workflow.OwnerRole(order.Status)
		if _, err := s.emitter.Emit(tx, Event{
			Type:    EventOrderUpdated,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: map[string]interface{}{"action": models.LogActionCreated, "order": order},
			Users:   orderRecipients(order),
			Roles:   append([]workflow.AccountType{owner}, adminRoles...),
		}); err != nil {
			return err
		}

		if assignee != nil {
			if err := s.recordAssignment(tx, actor, order, assignee, nil); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Order %s created by user %d", created.OrderNumber, actor.ID)
	return s.GetOrder(ctx, created.ID)
}

// ListOrders returns a page of orders visible to actor. Admins see every
// order; other roles see orders in statuses they own or assigned to them.
func (s *OrderService) ListOrders(ctx context.Context, actor workflow.Actor, filter OrderFilter) ([]models.Order, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := s.db.WithContext(ctx).Model(&models.Order{})

	if !actor.Role.IsAdmin() {
		visible := workflow.StatusesVisibleTo(actor.Role)
		if len(visible) > 0 {
			statuses := make([]string, len(visible))
			for i, st := range visible {
				statuses[i] = string(st)
			}
			query = query.Where("(status IN ? OR assigned_to_id = ?)", statuses, actor.ID)
		} else {
			query = query.Where("assigned_to_id = ?", actor.ID)
		}
	}

	if filter.Status != "" {
		status, err := workflow.ParseStatus(filter.Status)
		if err != nil {
			return nil, 0, &ValidationError{Field: "status", Message: err.Error()}
		}
		query = query.Where("status = ?", string(status))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(order_number) LIKE ? OR LOWER(requirements) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	if err := query.
		Preload("Customer").
		Preload("AssignedTo").
		Order("queue_position ASC").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder loads an order with its customer, assignee and files
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("AssignedTo").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	return &order, nil
}

// CanView reports whether actor may see order
func CanView(actor workflow.Actor, order *models.Order) bool {
	if actor.Role.IsAdmin() {
		return true
	}
	if order.AssignedToID != nil && *order.AssignedToID == actor.ID {
		return true
	}
	for _, s := range workflow.StatusesVisibleTo(actor.Role) {
		if s == order.Status {
			return true
		}
	}
	return false
}

// UpdateOrder changes descriptive fields. Status and assignment have their
// own operations.
func (s *OrderService) UpdateOrder(ctx context.Context, actor workflow.Actor, id uint, in UpdateOrderInput) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if in.Version != nil && *in.Version != order.Version {
			return &ConflictError{Message: fmt.Sprintf("order %s is at version %d, not %d", order.OrderNumber, order.Version, *in.Version)}
		}

		updates := map[string]interface{}{}
		var changed []string
		if in.CustomerID != nil && *in.CustomerID != order.CustomerID {
			var customer models.Customer
			if err := tx.First(&customer, *in.CustomerID).Error; err != nil {
				return notFoundOr(err, "customer", *in.CustomerID)
			}
			updates["customer_id"] = customer.ID
			changed = append(changed, "customer")
		}
		if in.Requirements != nil && strings.TrimSpace(*in.Requirements) != order.Requirements {
			updates["requirements"] = strings.TrimSpace(*in.Requirements)
			changed = append(changed, "requirements")
		}
		if in.Dimensions != nil && strings.TrimSpace(*in.Dimensions) != order.Dimensions {
			updates["dimensions"] = strings.TrimSpace(*in.Dimensions)
			changed = append(changed, "dimensions")
		}
		if in.QueuePosition != nil && *in.QueuePosition != order.QueuePosition {
			if *in.QueuePosition < 0 {
				return &ValidationError{Field: "queuePosition", Message: "must not be negative"}
			}
			updates["queue_position"] = *in.QueuePosition
			changed = append(changed, "queue position")
		}
		if len(updates) == 0 {
			return nil
		}

		if err := casUpdate(tx, order, updates); err != nil {
			return err
		}
		if err := writeLog(tx, &models.OrderLog{
			OrderID: order.ID,
			Action:  models.LogActionUpdated,
			ActorID: actorRef(actor),
			Message: "Updated " + strings.Join(changed, ", "),
		}); err != nil {
			return err
		}
		_, err = s.emitter.Emit(tx, Event{
			Type:    EventOrderUpdated,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: map[string]interface{}{"action": models.LogActionUpdated, "orderId": order.ID, "fields": changed},
			Users:   orderRecipients(order),
			Roles:   adminRoles,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// DeleteOrder soft-deletes an order
func (s *OrderService) DeleteOrder(ctx context.Context, actor workflow.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if err := casUpdate(tx, order, map[string]interface{}{}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Order{}, order.ID).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		if err := writeLog(tx, &models.OrderLog{
			OrderID:    order.ID,
			Action:     models.LogActionDeleted,
			FromStatus: order.Status,
			ActorID:    actorRef(actor),
			Message:    fmt.Sprintf("Order %s deleted", order.OrderNumber),
		}); err != nil {
			return err
		}
		_, err = s.emitter.Emit(tx, Event{
			Type:    EventOrderUpdated,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: map[string]interface{}{"action": models.LogActionDeleted, "orderId": order.ID},
			Users:   orderRecipients(order),
			Roles:   adminRoles,
		})
		return err
	})
}

// replayed checks the request id before any work is done. It returns true
// when the request was already applied to the same order with the same
// fingerprint.
func (s *OrderService) replayed(ctx context.Context, requestID string, orderID uint, fingerprint string) (bool, error) {
	if requestID == "" {
		return false, nil
	}
	cachedOrder, cachedFingerprint, found, err := s.cache.Lookup(ctx, requestID)
	if err != nil {
		log.Printf("Idempotency cache lookup failed for %s: %v", requestID, err)
		return false, nil
	}
	if !found {
		return false, nil
	}
	if cachedOrder != orderID || cachedFingerprint != fingerprint {
		return false, &ConflictError{Message: fmt.Sprintf("request id %s was already used for a different change", requestID)}
	}
	return true, nil
}

// claimRequest records requestID in the transaction. It reports true when
// the same request had already been applied.
func claimRequest(tx *gorm.DB, requestID string, orderID uint, fingerprint string) (bool, error) {
	if requestID == "" {
		return false, nil
	}

	var existing models.TransitionRequest
	err := tx.Where("request_id = ?", requestID).Take(&existing).Error
	if err == nil {
		if existing.OrderID != orderID || existing.Fingerprint != fingerprint {
			return false, &ConflictError{Message: fmt.Sprintf("request id %s was already used for a different change", requestID)}
		}
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := tx.Create(&models.TransitionRequest{
		RequestID:   requestID,
		OrderID:     orderID,
		Fingerprint: fingerprint,
	}).Error; err != nil {
		if isUniqueViolation(err) {
			return false, &ConflictError{Message: fmt.Sprintf("request %s is already being processed", requestID), Cause: err}
		}
		return false, err
	}
	return false, nil
}

func (s *OrderService) remember(ctx context.Context, requestID string, orderID uint, fingerprint string) {
	if requestID == "" {
		return
	}
	if err := s.cache.Remember(ctx, requestID, orderID, fingerprint); err != nil {
		log.Printf("Idempotency cache write failed for %s: %v", requestID, err)
	}
}

// ChangeStatus validates and applies a status transition. An assignee whose
// role does not own the new stage is released in the same transaction.
func (s *OrderService) ChangeStatus(ctx context.Context, actor workflow.Actor, in ChangeStatusInput) (*models.Order, error) {
	target, err := workflow.ParseStatus(in.Status)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: err.Error()}
	}
	fingerprint := "status:" + string(target)

	if done, err := s.replayed(ctx, in.RequestID, in.OrderID, fingerprint); err != nil {
		return nil, err
	} else if done {
		return s.GetOrder(ctx, in.OrderID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, in.OrderID)
		if err != nil {
			return err
		}

		if done, err := claimRequest(tx, in.RequestID, order.ID, fingerprint); err != nil || done {
			return err
		}

		if err := workflow.CanTransition(order.Status, target, actor, order.AssignedToID); err != nil {
			return err
		}

		from := order.Status
		previousAssignee := order.AssignedToID
		updates := map[string]interface{}{"status": string(target)}

		cleared := false
		if order.AssignedToID != nil {
			var assignee models.User
			err := tx.First(&assignee, *order.AssignedToID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				cleared = true
			case err != nil:
				return err
			case !workflow.AssignmentSurvives(target, assignee.AccountType):
				cleared = true
			}
			if cleared {
				updates["assigned_to_id"] = nil
			}
		}

		if err := casUpdate(tx, order, updates); err != nil {
			return err
		}
		order.Status = target
		if cleared {
			order.AssignedToID = nil
		}

		message := fmt.Sprintf("Status changed from %s to %s", from, target)
		if note := strings.TrimSpace(in.Note); note != "" {
			message += ": " + note
		}
		if err := writeLog(tx, &models.OrderLog{
			OrderID:    order.ID,
			Action:     models.LogActionStatusChanged,
			FromStatus: from,
			ToStatus:   target,
			ActorID:    actorRef(actor),
			Message:    message,
		}); err != nil {
			return err
		}
		if cleared {
			if err := writeLog(tx, &models.OrderLog{
				OrderID:      order.ID,
				Action:       models.LogActionUnassigned,
				AssignedToID: previousAssignee,
				ActorID:      actorRef(actor),
				Message:      fmt.Sprintf("Unassigned on entering %s", target),
			}); err != nil {
				return err
			}
		}

		owner, _ := workflow.OwnerRole(target)
		var users []uint
		if previousAssignee != nil {
			users = append(users, *previousAssignee)
		}
		if _, err := s.emitter.Emit(tx, Event{
			Type:    EventChangeStatus,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: map[string]interface{}{
				"orderId":      order.ID,
				"orderNumber":  order.OrderNumber,
				"fromStatus":   from,
				"status":       target,
				"assignedToId": order.AssignedToID,
				"note":         strings.TrimSpace(in.Note),
			},
			Users: users,
			Roles: append([]workflow.AccountType{owner}, adminRoles...),
		}); err != nil {
			return err
		}

		fromStage, _ := workflow.StageOf(from)
		toStage, _ := workflow.StageOf(target)
		if fromStage != toStage && !owner.IsAdmin() {
			return s.emitter.NotifyRole(tx, owner, &order.ID, order.Version, EventChangeStatus,
				fmt.Sprintf("Order %s is now %s", order.OrderNumber, target))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, in.RequestID, in.OrderID, fingerprint)
	log.Printf("Order %d moved to %s by user %d", in.OrderID, target, actor.ID)
	return s.GetOrder(ctx, in.OrderID)
}

// Approve moves an order awaiting review on to cutout
func (s *OrderService) Approve(ctx context.Context, actor workflow.Actor, orderID uint, note, requestID string) (*models.Order, error) {
	return s.ChangeStatus(ctx, actor, ChangeStatusInput{
		OrderID:   orderID,
		Status:    string(workflow.CutoutPending),
		Note:      note,
		RequestID: requestID,
	})
}

// Reject closes an order awaiting review
func (s *OrderService) Reject(ctx context.Context, actor workflow.Actor, orderID uint, note, requestID string) (*models.Order, error) {
	return s.ChangeStatus(ctx, actor, ChangeStatusInput{
		OrderID:   orderID,
		Status:    string(workflow.AdminRejected),
		Note:      note,
		RequestID: requestID,
	})
}

// assignableUser loads the user and checks they can hold an order in status
func (s *OrderService) assignableUser(tx *gorm.DB, status workflow.Status, userID uint, required workflow.AccountType) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	if !user.IsActive {
		return nil, &ValidationError{Field: "userId", Message: fmt.Sprintf("user %d is not active", userID)}
	}
	if required != "" && user.AccountType != required {
		return nil, &workflow.RoleMismatchError{Status: status, Required: required, Actual: user.AccountType}
	}
	if err := workflow.CanAssign(status, user.AccountType); err != nil {
		return nil, err
	}
	return &user, nil
}

// Assign hands an order to a user whose role owns the current stage
func (s *OrderService) Assign(ctx context.Context, actor workflow.Actor, in AssignInput) (*models.Order, error) {
	fingerprint := fmt.Sprintf("assign:%d", in.UserID)

	if done, err := s.replayed(ctx, in.RequestID, in.OrderID, fingerprint); err != nil {
		return nil, err
	} else if done {
		return s.GetOrder(ctx, in.OrderID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, in.OrderID)
		if err != nil {
			return err
		}

		if done, err := claimRequest(tx, in.RequestID, order.ID, fingerprint); err != nil || done {
			return err
		}

		user, err := s.assignableUser(tx, order.Status, in.UserID, in.RequiredRole)
		if err != nil {
			return err
		}
		if !actor.Role.IsAdmin() && actor.Role != user.AccountType {
			return &ForbiddenError{Message: fmt.Sprintf("%s cannot assign orders to %s users", actor.Role, user.AccountType)}
		}
		if order.AssignedToID != nil && *order.AssignedToID == user.ID {
			return nil
		}

		previous := order.AssignedToID
		if err := casUpdate(tx, order, map[string]interface{}{"assigned_to_id": user.ID}); err != nil {
			return err
		}
		order.AssignedToID = &user.ID

		return s.recordAssignment(tx, actor, order, user, previous)
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, in.RequestID, in.OrderID, fingerprint)
	return s.GetOrder(ctx, in.OrderID)
}

func (s *OrderService) recordAssignment(tx *gorm.DB, actor workflow.Actor, order *models.Order, user *models.User, previous *uint) error {
	if err := writeLog(tx, &models.OrderLog{
		OrderID:      order.ID,
		Action:       models.LogActionAssigned,
		AssignedToID: &user.ID,
		ActorID:      actorRef(actor),
		Message:      "Assigned to " + user.FullName(),
	}); err != nil {
		return err
	}

	users := []uint{user.ID}
	if previous != nil {
		users = append(users, *previous)
	}
	if _, err := s.emitter.Emit(tx, Event{
		Type:    EventAssignment,
		OrderID: &order.ID,
		Version: order.Version,
		Payload: map[string]interface{}{
			"orderId":            order.ID,
			"orderNumber":        order.OrderNumber,
			"status":             order.Status,
			"assignedToId":       user.ID,
			"assignedToName":     user.FullName(),
			"previousAssigneeId": previous,
		},
		Users: users,
		Roles: adminRoles,
	}); err != nil {
		return err
	}

	_, err := s.emitter.Notify(tx, user.ID, &order.ID, order.Version, EventAssignment,
		fmt.Sprintf("Order %s has been assigned to you", order.OrderNumber))
	return err
}

// UpdateWorkQueue sets queue positions for a batch of orders atomically
func (s *OrderService) UpdateWorkQueue(ctx context.Context, actor workflow.Actor, entries []QueueEntry) error {
	if len(entries) == 0 {
		return &ValidationError{Field: "orders", Message: "at least one entry is required"}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if entry.Position < 0 {
				return &ValidationError{Field: "position", Message: "must not be negative"}
			}
			order, err := loadOrder(tx, entry.OrderID)
			if err != nil {
				return err
			}
			if order.QueuePosition == entry.Position {
				continue
			}
			if err := casUpdate(tx, order, map[string]interface{}{"queue_position": entry.Position}); err != nil {
				return err
			}
			if _, err := s.emitter.Emit(tx, Event{
				Type:    EventOrderUpdated,
				OrderID: &order.ID,
				Version: order.Version,
				Payload: map[string]interface{}{"action": "queue", "orderId": order.ID, "queuePosition": entry.Position},
				Users:   orderRecipients(order),
				Roles:   adminRoles,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListLogs returns the audit trail of an order, oldest first
func (s *OrderService) ListLogs(ctx context.Context, orderID uint) ([]models.OrderLog, error) {
	if _, err := loadOrder(s.db.WithContext(ctx), orderID); err != nil {
		return nil, err
	}

	var logs []models.OrderLog
	if err := s.db.WithContext(ctx).
		Preload("Actor").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch order logs: %w", err)
	}
	return logs, nil
}

// AllowedTransitions lists the statuses actor may move the order to next
func (s *OrderService) AllowedTransitions(ctx context.Context, actor workflow.Actor, orderID uint) ([]workflow.Status, error) {
	order, err := loadOrder(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	return workflow.AllowedNext(order.Status, actor, order.AssignedToID), nil
}

// PurgeTransitionRequests forgets request ids recorded before cutoff
func (s *OrderService) PurgeTransitionRequests(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.TransitionRequest{})
	return res.RowsAffected, res.Error
}
