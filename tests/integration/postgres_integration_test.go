package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/utils"
	"github.com/signworks/orderflow-api/workflow"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresIntegrationTestSuite exercises concurrent order changes against a
// real PostgreSQL, where transactions actually overlap.
type PostgresIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	orders    *services.OrderService
	admin     workflow.Actor
	graphics  *models.User
	customer  *models.Customer
}

// SetupSuite starts PostgreSQL and migrates the schema
func (suite *PostgresIntegrationTestSuite) SetupSuite() {
	if testing.Short() {
		suite.T().Skip("skipping PostgreSQL integration tests in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("orderflow"),
		postgres.WithUsername("orderflow"),
		postgres.WithPassword("orderflow"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(models.AutoMigrate(db))
}

// SetupTest starts every test from empty tables
func (suite *PostgresIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE outbox_deliveries, outbox_events, transition_requests, notifications, order_logs, order_files, " +
			"invoice_items, invoices, challan_items, challans, messages, orders, customers, leads, users RESTART IDENTITY CASCADE",
	).Error)

	services.SetIdempotencyCache(nil)
	suite.orders = services.NewOrderService(suite.db)

	admin := suite.seedUser(workflow.Admin, "admin@signworks.test")
	suite.admin = workflow.Actor{ID: admin.ID, Role: admin.AccountType}
	suite.graphics = suite.seedUser(workflow.Graphics, "graphics@signworks.test")

	suite.customer = &models.Customer{Name: "Acme Signs", Company: "Acme Signs Pvt Ltd", Address: "12 Market Road, Pune"}
	suite.Require().NoError(suite.db.Create(suite.customer).Error)
}

// TearDownSuite terminates the container
func (suite *PostgresIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *PostgresIntegrationTestSuite) seedUser(role workflow.AccountType, email string) *models.User {
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	user := &models.User{
		FirstName:    string(role),
		LastName:     "Tester",
		Email:        email,
		PasswordHash: hash,
		AccountType:  role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *PostgresIntegrationTestSuite) countLogs(orderID uint, action string) int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(&models.OrderLog{}).
		Where("order_id = ? AND action = ?", orderID, action).Count(&n).Error)
	return n
}

// race runs fn from n goroutines released at the same moment
func race(n int, fn func(i int) error) []error {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func (suite *PostgresIntegrationTestSuite) TestConcurrentTransitionsApplyOnce() {
	ctx := context.Background()
	order, err := suite.orders.CreateOrder(ctx, suite.admin, services.CreateOrderInput{CustomerID: suite.customer.ID})
	suite.Require().NoError(err)

	errs := race(8, func(int) error {
		_, err := suite.orders.ChangeStatus(ctx, suite.admin, services.ChangeStatusInput{
			OrderID: order.ID,
			Status:  string(workflow.GraphicsInProgress),
		})
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, services.ErrConflict), errors.Is(err, workflow.ErrInvalidTransition):
		default:
			suite.Failf("unexpected error", "%v", err)
		}
	}
	suite.Equal(1, succeeded, "exactly one concurrent writer wins")

	current, err := suite.orders.GetOrder(ctx, order.ID)
	suite.Require().NoError(err)
	suite.Equal(workflow.GraphicsInProgress, current.Status)
	suite.Equal(uint(2), current.Version)
	suite.EqualValues(1, suite.countLogs(order.ID, models.LogActionStatusChanged))
}

func (suite *PostgresIntegrationTestSuite) TestConcurrentRetriesWithSameRequestID() {
	ctx := context.Background()
	order, err := suite.orders.CreateOrder(ctx, suite.admin, services.CreateOrderInput{CustomerID: suite.customer.ID})
	suite.Require().NoError(err)

	graphics := workflow.Actor{ID: suite.graphics.ID, Role: suite.graphics.AccountType}
	errs := race(6, func(int) error {
		_, err := suite.orders.ChangeStatus(ctx, graphics, services.ChangeStatusInput{
			OrderID:   order.ID,
			Status:    string(workflow.GraphicsInProgress),
			RequestID: "retry-storm",
		})
		return err
	})

	for _, err := range errs {
		if err != nil {
			suite.ErrorIs(err, services.ErrConflict, "a retry either replays or is told the request is in flight")
		}
	}

	current, err := suite.orders.GetOrder(ctx, order.ID)
	suite.Require().NoError(err)
	suite.Equal(uint(2), current.Version)
	suite.EqualValues(1, suite.countLogs(order.ID, models.LogActionStatusChanged))

	var changeEvents int64
	suite.Require().NoError(suite.db.Model(&models.OutboxEvent{}).
		Where("event_type = ?", services.EventChangeStatus).Count(&changeEvents).Error)
	suite.EqualValues(1, changeEvents, "a replayed request emits nothing")
}

func (suite *PostgresIntegrationTestSuite) TestConcurrentAssignmentsLeaveOneOwner() {
	ctx := context.Background()
	order, err := suite.orders.CreateOrder(ctx, suite.admin, services.CreateOrderInput{CustomerID: suite.customer.ID})
	suite.Require().NoError(err)

	candidates := []*models.User{suite.graphics}
	for i := 2; i <= 4; i++ {
		candidates = append(candidates, suite.seedUser(workflow.Graphics, fmt.Sprintf("graphics%d@signworks.test", i)))
	}

	errs := race(len(candidates), func(i int) error {
		_, err := suite.orders.Assign(ctx, suite.admin, services.AssignInput{OrderID: order.ID, UserID: candidates[i].ID})
		return err
	})

	applied := 0
	for _, err := range errs {
		if err == nil {
			applied++
			continue
		}
		suite.ErrorIs(err, services.ErrConflict)
	}
	suite.GreaterOrEqual(applied, 1)

	current, err := suite.orders.GetOrder(ctx, order.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(current.AssignedToID)
	suite.Equal(uint(1+applied), current.Version, "every applied assignment bumped the version once")
	suite.EqualValues(applied, suite.countLogs(order.ID, models.LogActionAssigned))
}

func (suite *PostgresIntegrationTestSuite) TestConcurrentLeadConversion() {
	ctx := context.Background()
	leads := services.NewLeadService(suite.db)
	name := "Grand Hotel"
	lead, err := leads.CreateLead(ctx, suite.admin.ID, services.LeadInput{Name: &name})
	suite.Require().NoError(err)

	errs := race(5, func(int) error {
		_, _, err := leads.ConvertToCustomer(ctx, lead.ID, services.ConvertLeadInput{})
		return err
	})

	converted := 0
	for _, err := range errs {
		if err == nil {
			converted++
			continue
		}
		suite.ErrorIs(err, services.ErrAlreadyConverted)
	}
	suite.Equal(1, converted)

	var customers int64
	suite.Require().NoError(suite.db.Model(&models.Customer{}).Where("lead_id = ?", lead.ID).Count(&customers).Error)
	suite.EqualValues(1, customers, "losing conversions roll back their customer")
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationTestSuite))
}
