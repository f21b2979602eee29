package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coffee-orders/internal/domain"
	"coffee-orders/internal/infra"
	"coffee-orders/internal/mocks"
	"coffee-orders/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOrderID = "11111111-1111-1111-1111-111111111111"

func newTestRouter() (*gin.Engine, *mocks.MockOrderRepository, *mocks.MockPushSender) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(mocks.MockOrderRepository)
	mockPublisher := new(mocks.MockPublisher)
	mockFeed := new(mocks.MockFeed)
	mockPush := new(mocks.MockPushSender)

	// async fire-and-forget events are not under test here
	mockPublisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mockFeed.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	service := services.NewOrderService(mockRepo, mockPublisher, mockFeed)
	handler := NewHandler(service, mockPush, nil)

	r := gin.New()
	handler.RegisterRoutes(r)
	return r, mockRepo, mockPush
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestCreateOrderAndReadStatus(t *testing.T) {
	r, mockRepo, _ := newTestRouter()

	var saved *domain.Order
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Order)
		saved.ID = testOrderID
	})

	w := doJSON(t, r, http.MethodPost, "/orders", CreateOrderRequest{
		Items: []domain.OrderItem{{ID: "x", Name: "Latte", Price: 4.5, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created CreateOrderResponse
	decodeBody(t, w, &created)
	assert.NotEmpty(t, created.OrderID)
	assert.InDelta(t, 9.0, created.Total, 1e-9)
	assert.Equal(t, domain.StatusNew, created.Status)

	// the status read must reflect what the store holds
	mockRepo.On("FindByID", mock.Anything, created.OrderID).Return(saved, nil)

	w = doJSON(t, r, http.MethodGet, "/status/"+created.OrderID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	decodeBody(t, w, &status)
	assert.Equal(t, created.OrderID, status.OrderID)
	assert.Equal(t, domain.StatusNew, status.Status)
	assert.InDelta(t, 9.0, status.Total, 1e-9)

	time.Sleep(50 * time.Millisecond)
	mockRepo.AssertExpectations(t)
}

func TestCreateOrderAliasRoute(t *testing.T) {
	r, mockRepo, _ := newTestRouter()

	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).ID = testOrderID
	})

	w := doJSON(t, r, http.MethodPost, "/order", CreateOrderRequest{
		Items: []domain.OrderItem{{ID: "x", Name: "Espresso", Price: 3.0, Quantity: 1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	time.Sleep(50 * time.Millisecond)
	mockRepo.AssertExpectations(t)
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "empty items", body: CreateOrderRequest{Items: []domain.OrderItem{}}},
		{name: "missing items", body: map[string]any{}},
		{name: "invalid quantity", body: CreateOrderRequest{
			Items: []domain.OrderItem{{ID: "x", Name: "Latte", Price: 4.5, Quantity: 0}},
		}},
		{name: "missing item id", body: CreateOrderRequest{
			Items: []domain.OrderItem{{Name: "Latte", Price: 4.5, Quantity: 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mockRepo, _ := newTestRouter()

			w := doJSON(t, r, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			// no order may be created on invalid input
			mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestGetOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()

		order := &domain.Order{
			ID:        testOrderID,
			Items:     []domain.OrderItem{{ID: "x", Name: "Latte", Price: 4.5, Quantity: 2}},
			Total:     9.0,
			Status:    domain.StatusInProgress,
			CreatedAt: time.Now(),
		}
		mockRepo.On("FindByID", mock.Anything, testOrderID).Return(order, nil)

		w := doJSON(t, r, http.MethodGet, "/orders/"+testOrderID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp OrderResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, testOrderID, resp.ID)
		assert.Len(t, resp.Items, 1)
		assert.Equal(t, domain.StatusInProgress, resp.Status)
	})

	t.Run("not found", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()
		mockRepo.On("FindByID", mock.Anything, "unknown-id").Return(nil, nil)

		w := doJSON(t, r, http.MethodGet, "/orders/unknown-id", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()
		mockRepo.On("FindByID", mock.Anything, testOrderID).Return(nil, errors.New("backend unavailable"))

		w := doJSON(t, r, http.MethodGet, "/orders/"+testOrderID, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetStatusByQuery(t *testing.T) {
	t.Run("missing orderId", func(t *testing.T) {
		r, _, _ := newTestRouter()
		w := doJSON(t, r, http.MethodGet, "/status", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()
		order := &domain.Order{ID: testOrderID, Total: 9.0, Status: domain.StatusReady, CreatedAt: time.Now()}
		mockRepo.On("FindByID", mock.Anything, testOrderID).Return(order, nil)

		w := doJSON(t, r, http.MethodGet, "/status?orderId="+testOrderID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp StatusResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, domain.StatusReady, resp.Status)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("successful update", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()

		now := time.Now()
		old := &domain.Order{ID: testOrderID, Status: domain.StatusNew, CreatedAt: now}
		updated := &domain.Order{ID: testOrderID, Status: domain.StatusInProgress, CreatedAt: now, UpdatedAt: &now}
		mockRepo.On("UpdateStatus", mock.Anything, testOrderID, domain.StatusInProgress).Return(old, updated, nil)

		w := doJSON(t, r, http.MethodPatch, "/orders/"+testOrderID+"/status", UpdateStatusRequest{Status: "in_progress"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp OrderResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, domain.StatusInProgress, resp.Status)

		time.Sleep(50 * time.Millisecond)
		mockRepo.AssertExpectations(t)
	})

	t.Run("legacy alias accepted as input", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()

		now := time.Now()
		old := &domain.Order{ID: testOrderID, Status: domain.StatusNew, CreatedAt: now}
		updated := &domain.Order{ID: testOrderID, Status: domain.StatusInProgress, CreatedAt: now, UpdatedAt: &now}
		mockRepo.On("UpdateStatus", mock.Anything, testOrderID, domain.StatusInProgress).Return(old, updated, nil)

		w := doJSON(t, r, http.MethodPatch, "/orders/"+testOrderID+"/status", UpdateStatusRequest{Status: "preparing"})
		assert.Equal(t, http.StatusOK, w.Code)

		time.Sleep(50 * time.Millisecond)
	})

	t.Run("unknown status", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()

		w := doJSON(t, r, http.MethodPatch, "/orders/"+testOrderID+"/status", UpdateStatusRequest{Status: "cancelled"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order not found", func(t *testing.T) {
		r, mockRepo, _ := newTestRouter()
		mockRepo.On("UpdateStatus", mock.Anything, "missing", domain.StatusReady).Return(nil, nil, nil)

		w := doJSON(t, r, http.MethodPatch, "/orders/missing/status", UpdateStatusRequest{Status: "ready"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func strptr(s string) *string { return &s }

func TestOrdersWebhook(t *testing.T) {
	readyPayload := func() WebhookPayload {
		return WebhookPayload{
			Type:      "UPDATE",
			Table:     "orders",
			Record:    &WebhookRecord{ID: testOrderID, Status: strptr("ready"), PushToken: "ExponentPushToken[abc]"},
			OldRecord: &WebhookRecord{ID: testOrderID, Status: strptr("in_progress"), PushToken: "ExponentPushToken[abc]"},
		}
	}

	skipTests := []struct {
		name    string
		mutate  func(*WebhookPayload)
		skipped string
	}{
		{
			name:    "insert events are skipped",
			mutate:  func(p *WebhookPayload) { p.Type = "INSERT" },
			skipped: "not orders UPDATE",
		},
		{
			name:    "other tables are skipped",
			mutate:  func(p *WebhookPayload) { p.Table = "menu" },
			skipped: "not orders UPDATE",
		},
		{
			name:    "missing new status is skipped",
			mutate:  func(p *WebhookPayload) { p.Record.Status = nil },
			skipped: "no status change",
		},
		{
			name:    "missing old record is skipped",
			mutate:  func(p *WebhookPayload) { p.OldRecord = nil },
			skipped: "no status change",
		},
		{
			name:    "unchanged status is skipped",
			mutate:  func(p *WebhookPayload) { p.OldRecord.Status = strptr("ready") },
			skipped: "status unchanged",
		},
		{
			name:    "transition to completed is skipped",
			mutate:  func(p *WebhookPayload) { p.Record.Status = strptr("completed"); p.OldRecord.Status = strptr("ready") },
			skipped: "push only when ready",
		},
		{
			name: "missing push token is skipped",
			mutate: func(p *WebhookPayload) {
				p.Record.PushToken = "  "
				p.OldRecord.PushToken = ""
			},
			skipped: "no push_token",
		},
	}

	for _, tt := range skipTests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, mockPush := newTestRouter()

			payload := readyPayload()
			tt.mutate(&payload)

			w := doJSON(t, r, http.MethodPost, "/webhooks/orders", payload)
			require.Equal(t, http.StatusOK, w.Code)

			var resp map[string]any
			decodeBody(t, w, &resp)
			assert.Equal(t, tt.skipped, resp["skipped"])

			mockPush.AssertNotCalled(t, "SendPush", mock.Anything, mock.Anything)
		})
	}

	t.Run("ready transition delivers a push", func(t *testing.T) {
		r, _, mockPush := newTestRouter()

		mockPush.On("SendPush", mock.Anything, mock.MatchedBy(func(msg infra.PushMessage) bool {
			return msg.To == "ExponentPushToken[abc]" && msg.Data["orderId"] == testOrderID
		})).Return(nil).Once()

		w := doJSON(t, r, http.MethodPost, "/webhooks/orders", readyPayload())
		assert.Equal(t, http.StatusOK, w.Code)
		mockPush.AssertExpectations(t)
	})

	t.Run("token falls back to the old record", func(t *testing.T) {
		r, _, mockPush := newTestRouter()

		payload := readyPayload()
		payload.Record.PushToken = ""

		mockPush.On("SendPush", mock.Anything, mock.MatchedBy(func(msg infra.PushMessage) bool {
			return msg.To == "ExponentPushToken[abc]"
		})).Return(nil).Once()

		w := doJSON(t, r, http.MethodPost, "/webhooks/orders", payload)
		assert.Equal(t, http.StatusOK, w.Code)
		mockPush.AssertExpectations(t)
	})

	t.Run("push failure reports 502 and rolls nothing back", func(t *testing.T) {
		r, _, mockPush := newTestRouter()

		mockPush.On("SendPush", mock.Anything, mock.Anything).Return(errors.New("expo unavailable")).Once()

		w := doJSON(t, r, http.MethodPost, "/webhooks/orders", readyPayload())
		assert.Equal(t, http.StatusBadGateway, w.Code)
		mockPush.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		r, _, _ := newTestRouter()

		req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthAndMenu(t *testing.T) {
	r, _, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []MenuItem `json:"data"`
	}
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.Data)
}
