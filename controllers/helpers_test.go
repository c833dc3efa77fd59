package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/tests/testutil"
	"github.com/signworks/orderflow-api/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// apiResponse mirrors the response envelope
type apiResponse struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type controllerEnv struct {
	t       *testing.T
	db      *gorm.DB
	storage *services.MockStorage

	admin    *models.User
	graphics *models.User
	cutout   *models.User
	accounts *models.User
	display  *models.User
	customer *models.Customer
}

func newControllerEnv(t *testing.T) *controllerEnv {
	t.Helper()
	testutil.TestConfig(t)
	db := testutil.NewTestDB(t)

	storage := services.NewMockStorage()
	previous := services.GetStorage()
	storage.SetAsMockForTesting()
	t.Cleanup(func() { services.SetStorage(previous) })

	return &controllerEnv{
		t:        t,
		db:       db,
		storage:  storage,
		admin:    testutil.SeedUser(t, db, workflow.Admin, "admin@signworks.test"),
		graphics: testutil.SeedUser(t, db, workflow.Graphics, "graphics@signworks.test"),
		cutout:   testutil.SeedUser(t, db, workflow.Cutout, "cutout@signworks.test"),
		accounts: testutil.SeedUser(t, db, workflow.Accounts, "accounts@signworks.test"),
		display:  testutil.SeedUser(t, db, workflow.Display, "display@signworks.test"),
		customer: testutil.SeedCustomer(t, db, "Acme Signs"),
	}
}

// router registers handler under method and path behind a mock token for user
func (e *controllerEnv) router(user *models.User, method, path string, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, testutil.MockAuthMiddleware(user), handler)
	return r
}

func (e *controllerEnv) do(r *gin.Engine, method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

// newOrder creates an order through the service as the admin
func (e *controllerEnv) newOrder() *models.Order {
	e.t.Helper()
	order, err := services.NewOrderService(e.db).CreateOrder(
		context.Background(), workflow.Actor{ID: e.admin.ID, Role: e.admin.AccountType},
		services.CreateOrderInput{CustomerID: e.customer.ID, Requirements: "Backlit 3D letters"},
	)
	require.NoError(e.t, err)
	return order
}

// moveTo forces an order into status, bypassing the workflow
func (e *controllerEnv) moveTo(order *models.Order, status workflow.Status, assignee *models.User) {
	e.t.Helper()
	updates := map[string]interface{}{"status": string(status), "assigned_to_id": nil}
	if assignee != nil {
		updates["assigned_to_id"] = assignee.ID
	}
	require.NoError(e.t, e.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error)
}

func (e *controllerEnv) reload(id uint) *models.Order {
	e.t.Helper()
	var order models.Order
	require.NoError(e.t, e.db.First(&order, id).Error)
	return &order
}
