package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MustafaTarek77/Order-Management-System/handlers"
	"github.com/MustafaTarek77/Order-Management-System/internal/cart"
	"github.com/MustafaTarek77/Order-Management-System/internal/orders"
	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/memory"
	"github.com/MustafaTarek77/Order-Management-System/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	prefix  = "/api"
	userID  = "6d3b2b6c-5a0d-4cb1-9d2f-111111111111"
	pepsiID = "c0a80121-0001-4000-8000-aaaaaaaaaaaa"
)

func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory.NewStore()
	s.SeedUsers(store.User{ID: userID, Name: "Mustafa", Email: "mus@gmail.com"})
	s.SeedProducts(store.Product{ID: pepsiID, Name: "pepsi", Price: 1500, Stock: 25})

	cConf, err := cart.NewConf(s)
	require.NoError(t, err)
	oConf, err := orders.NewConf(s)
	require.NoError(t, err)
	uConf, err := users.NewConf(s)
	require.NoError(t, err)

	return handlers.API(prefix, cConf, oConf, uConf, nil)
}

func doJSON(t *testing.T, api *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)
	return w
}

func TestAddToCartEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodPost, prefix+"/cart/add", gin.H{
		"user_id": userID, "product_id": pepsiID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var crt store.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &crt))
	require.Len(t, crt.Items, 1)
	require.Equal(t, 2, crt.Items[0].Quantity)
}

func TestAddToCartEndpointInsufficientStock(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodPost, prefix+"/cart/add", gin.H{
		"user_id": userID, "product_id": pepsiID, "quantity": 26,
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAddToCartEndpointMissingField(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodPost, prefix+"/cart/add", gin.H{
		"user_id": userID, "quantity": 2,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewCartEndpointWithoutCart(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodGet, prefix+"/cart/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "null", w.Body.String())
}

func TestRemoveLastItemEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodPost, prefix+"/cart/add", gin.H{
		"user_id": userID, "product_id": pepsiID, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, http.MethodDelete, prefix+"/cart/remove", gin.H{
		"user_id": userID, "product_id": pepsiID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "deleted")
}

func TestCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodPost, prefix+"/cart/add", gin.H{
		"user_id": userID, "product_id": pepsiID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, http.MethodPost, prefix+"/orders", gin.H{"user_id": userID})
	require.Equal(t, http.StatusOK, w.Code)

	var order store.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, orders.StatusPending, order.Status)
	require.Equal(t, int64(3000), order.Total)

	w = doJSON(t, api, http.MethodGet, prefix+"/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, http.MethodPut, prefix+"/orders/"+order.ID+"/status", gin.H{"status": orders.StatusCompleted})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, http.MethodPost, prefix+"/orders/"+order.ID+"/apply-coupon", gin.H{"coupon_code": "NOPE"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, api, http.MethodPost, prefix+"/orders/"+order.ID+"/apply-coupon", gin.H{"coupon_code": orders.CouponSummer2024})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, int64(2700), order.Total)

	w = doJSON(t, api, http.MethodGet, fmt.Sprintf("%s/users/%s/orders", prefix, userID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history []users.OrderSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	require.Equal(t, order.ID, history[0].OrderID)
}

func TestCheckoutEmptyCartEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodPost, prefix+"/orders", gin.H{"user_id": userID})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderNotFoundEndpoints(t *testing.T) {
	api := newTestAPI(t)
	missing := uuid.NewString()

	w := doJSON(t, api, http.MethodGet, prefix+"/orders/"+missing, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, http.MethodPut, prefix+"/orders/"+missing+"/status", gin.H{"status": "COMPLETED"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, http.MethodPost, prefix+"/orders/"+missing+"/apply-coupon", gin.H{"coupon_code": orders.CouponSummer2024})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHistoryUserNotFound(t *testing.T) {
	api := newTestAPI(t)

	w := doJSON(t, api, http.MethodGet, fmt.Sprintf("%s/users/%s/orders", prefix, uuid.NewString()), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
