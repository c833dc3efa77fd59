package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/utils"
	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/gorm"
)

// UserService manages staff accounts
type UserService struct {
	db      *gorm.DB
	emitter *Emitter
}

// NewUserService creates a user service bound to db
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, emitter: NewEmitter()}
}

// CreateUserInput carries a new account
type CreateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	AccountType workflow.AccountType
	IsActive    *bool
}

// UpdateUserInput carries optional account changes
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Password    *string
	AccountType *workflow.AccountType
	IsActive    *bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate checks credentials and returns the active user
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, &AuthError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	}
	if !user.IsActive {
		return nil, &AuthError{Code: "ACCOUNT_INACTIVE", Message: "This account has been deactivated"}
	}
	return &user, nil
}

// GetActiveUser loads a user that may still act in the system
func (s *UserService) GetActiveUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, &AuthError{Code: "USER_NOT_FOUND", Message: "User not found"}
	}
	if !user.IsActive {
		return nil, &AuthError{Code: "ACCOUNT_INACTIVE", Message: "This account has been deactivated"}
	}
	return &user, nil
}

// ListUsers returns accounts, optionally filtered by type
func (s *UserService) ListUsers(ctx context.Context, accountType string) ([]models.User, error) {
	query := s.db.WithContext(ctx).Order("first_name ASC").Order("id ASC")
	if accountType != "" {
		t, err := workflow.ParseAccountType(accountType)
		if err != nil {
			return nil, &ValidationError{Field: "accountType", Message: err.Error()}
		}
		query = query.Where("account_type = ?", string(t))
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

func checkAccountTypeChange(actor workflow.Actor, target workflow.AccountType) error {
	if !target.IsValid() {
		return &ValidationError{Field: "accountType", Message: fmt.Sprintf("unknown account type %q", target)}
	}
	if target == workflow.SuperAdmin && actor.Role != workflow.SuperAdmin {
		return &ForbiddenError{Message: "only a SuperAdmin can grant SuperAdmin access"}
	}
	return nil
}

// CreateUser creates a staff account
func (s *UserService) CreateUser(ctx context.Context, actor workflow.Actor, in CreateUserInput) (*models.User, error) {
	if err := checkAccountTypeChange(actor, in.AccountType); err != nil {
		return nil, err
	}
	if len(in.Password) < utils.MinPasswordLength {
		return nil, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", utils.MinPasswordLength)}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		AccountType:  in.AccountType,
		IsActive:     active,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: fmt.Sprintf("an account with email %s already exists", user.Email)}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("User %d (%s) created by user %d", user.ID, user.AccountType, actor.ID)
	return user, nil
}

// UpdateUser changes account fields
func (s *UserService) UpdateUser(ctx context.Context, actor workflow.Actor, id uint, in UpdateUserInput) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	if user.AccountType == workflow.SuperAdmin && actor.Role != workflow.SuperAdmin {
		return nil, &ForbiddenError{Message: "only a SuperAdmin can modify a SuperAdmin account"}
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		updates["email"] = normalizeEmail(*in.Email)
	}
	if in.AccountType != nil && *in.AccountType != user.AccountType {
		if err := checkAccountTypeChange(actor, *in.AccountType); err != nil {
			return nil, err
		}
		updates["account_type"] = string(*in.AccountType)
	}
	if in.IsActive != nil {
		if !*in.IsActive && user.ID == actor.ID {
			return nil, &ValidationError{Field: "isActive", Message: "you cannot deactivate your own account"}
		}
		updates["is_active"] = *in.IsActive
	}
	if in.Password != nil {
		if len(*in.Password) < utils.MinPasswordLength {
			return nil, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", utils.MinPasswordLength)}
		}
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				if isUniqueViolation(err) {
					return &ConflictError{Message: "an account with that email already exists"}
				}
				return err
			}
			// Orders held by someone who can no longer work them are released.
			_, roleChanged := updates["account_type"]
			if roleChanged || (in.IsActive != nil && !*in.IsActive) {
				return s.releaseOrders(tx, actor, &user, false)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account and releases its orders
func (s *UserService) DeleteUser(ctx context.Context, actor workflow.Actor, id uint) error {
	if id == actor.ID {
		return &ValidationError{Field: "id", Message: "you cannot delete your own account"}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, "user", id)
		}
		if user.AccountType == workflow.SuperAdmin && actor.Role != workflow.SuperAdmin {
			return &ForbiddenError{Message: "only a SuperAdmin can delete a SuperAdmin account"}
		}
		if err := s.releaseOrders(tx, actor, &user, true); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// releaseOrders unassigns orders held by user that they may no longer hold.
// With all set every order is released.
func (s *UserService) releaseOrders(tx *gorm.DB, actor workflow.Actor, user *models.User, all bool) error {
	var current models.User
	stillValid := !all && tx.First(&current, user.ID).Error == nil && current.IsActive

	var orders []models.Order
	if err := tx.Where("assigned_to_id = ?", user.ID).Find(&orders).Error; err != nil {
		return err
	}
	for i := range orders {
		order := &orders[i]
		if stillValid && workflow.AssignmentSurvives(order.Status, current.AccountType) {
			continue
		}
		if err := casUpdate(tx, order, map[string]interface{}{"assigned_to_id": nil}); err != nil {
			return err
		}
		if err := writeLog(tx, &models.OrderLog{
			OrderID:      order.ID,
			Action:       models.LogActionUnassigned,
			AssignedToID: &user.ID,
			ActorID:      actorRef(actor),
			Message:      fmt.Sprintf("Unassigned from %s", user.FullName()),
		}); err != nil {
			return err
		}
		if _, err := s.emitter.Emit(tx, Event{
			Type:    EventAssignment,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: map[string]interface{}{
				"orderId":            order.ID,
				"orderNumber":        order.OrderNumber,
				"status":             order.Status,
				"assignedToId":       nil,
				"previousAssigneeId": user.ID,
			},
			Users: []uint{user.ID},
			Roles: adminRoles,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ChangePassword replaces the caller's password after verifying the old one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return notFoundOr(err, "user", userID)
	}
	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return &ValidationError{Field: "oldPassword", Message: "current password is incorrect"}
	}
	if len(newPassword) < utils.MinPasswordLength {
		return &ValidationError{Field: "newPassword", Message: fmt.Sprintf("must be at least %d characters", utils.MinPasswordLength)}
	}
	if oldPassword == newPassword {
		return &ValidationError{Field: "newPassword", Message: "must differ from the current password"}
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error
}
