package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pos-backend/internal/auth"
)

type stubAuthRepo struct {
	mu     sync.Mutex
	byName map[string]*auth.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{byName: make(map[string]*auth.User)}
}

func (s *stubAuthRepo) CreateUser(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[user.Username] = user
	return nil
}

func (s *stubAuthRepo) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byName[username]; ok {
		return user, nil
	}
	return nil, auth.ErrUserNotFound
}

func (s *stubAuthRepo) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byName {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// newTestServer wires a real auth middleware around the sales routes and
// returns the router, the repository and a valid bearer token whose user
// owns the seeded products.
func newTestServer(t *testing.T) (*gin.Engine, *FakeRepository, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	authUC := auth.NewAuthUseCase(newStubAuthRepo(), logger, []byte("test-secret"), time.Hour)

	user, err := authUC.Register(context.Background(), "cashier", "password123")
	require.NoError(t, err)
	token, err := authUC.Login(context.Background(), "cashier", "password123")
	require.NoError(t, err)

	repo := NewFakeRepository()
	processor := newTestProcessor(t, repo)
	handler := NewHandler(processor, nil, logger)

	r := gin.New()
	api := r.Group("/api", auth.Middleware(authUC))
	api.POST("/sales", handler.CreateSale)
	api.GET("/sales", handler.ListSales)
	api.GET("/sales/:id", handler.GetSale)

	return r, repo, token, user.ID
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSaleHandler_Committed(t *testing.T) {
	r, repo, token, userID := newTestServer(t)
	repo.Seed("p1", userID, "Coffee", price("3.50"), 10)

	w := doJSON(r, http.MethodPost, "/api/sales", token, gin.H{
		"items": []gin.H{{"product_id": "p1", "quantity": 2}},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var txn Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	assert.Equal(t, userID, txn.OwnerID)
	assert.True(t, txn.TotalAmount.Equal(price("7.00")))
	assert.Equal(t, 8, repo.Stock("p1"))
}

func TestCreateSaleHandler_InsufficientStockConflict(t *testing.T) {
	r, repo, token, userID := newTestServer(t)
	repo.Seed("p1", userID, "Coffee", price("3.50"), 2)

	w := doJSON(r, http.MethodPost, "/api/sales", token, gin.H{
		"items": []gin.H{{"product_id": "p1", "quantity": 5}},
	})

	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		ProductID string `json:"product_id"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "p1", body.ProductID)
	assert.Equal(t, 5, body.Requested)
	assert.Equal(t, 2, body.Available)
	assert.Equal(t, 2, repo.Stock("p1"))
}

func TestCreateSaleHandler_UnknownProduct(t *testing.T) {
	r, _, token, _ := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/api/sales", token, gin.H{
		"items": []gin.H{{"product_id": "ghost", "quantity": 1}},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSaleHandler_BadBody(t *testing.T) {
	r, _, token, _ := newTestServer(t)

	// empty items is rejected by binding before the processor runs
	w := doJSON(r, http.MethodPost, "/api/sales", token, gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/sales", token, gin.H{
		"items": []gin.H{{"product_id": "p1", "quantity": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesRoutes_RequireToken(t *testing.T) {
	r, _, _, _ := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/api/sales", "", gin.H{
		"items": []gin.H{{"product_id": "p1", "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/sales", "bad.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetSaleHandler_NotFound(t *testing.T) {
	r, _, token, _ := newTestServer(t)

	w := doJSON(r, http.MethodGet, "/api/sales/unknown-id", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSalesHandler_Empty(t *testing.T) {
	r, _, token, _ := newTestServer(t)

	w := doJSON(r, http.MethodGet, "/api/sales", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"transactions": []}`, w.Body.String())
}
