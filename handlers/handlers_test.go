package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"water-delivery-api/config"
	"water-delivery-api/models"
	"water-delivery-api/notify"
	"water-delivery-api/realtime"
	"water-delivery-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Per-test in-memory database to avoid cross-test interference
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	config.OpenDB(dsn)
	sqlDB, err := config.DB.DB()
	require.NoError(t, err)
	// One connection keeps concurrent notification inserts serialized on
	// the shared-cache sqlite database
	sqlDB.SetMaxOpenConns(1)

	notify.Hub = realtime.NewHub()

	r := gin.New()
	routes.SetupRoutes(r, notify.Hub)
	return r
}

func httpDo(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID uint `json:"id"`
	} `json:"user"`
}

func register(t *testing.T, r *gin.Engine, name, email string, role models.UserRole) (string, uint) {
	t.Helper()
	w := httpDo(r, "POST", "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func placeOrder(t *testing.T, r *gin.Engine, token string, body gin.H) uint {
	t.Helper()
	w := httpDo(r, "POST", "/api/orders", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Order.ID
}

func defaultOrderBody() gin.H {
	return gin.H{
		"delivery_address": "12 Lake Road",
		"time_slot":        "morning",
		"items": []gin.H{
			{"size": "5L", "quantity": 2},
			{"size": "10L", "quantity": 1},
		},
	}
}

func TestPlaceOrderPricing(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	// SAVE10: percent 10, min order 100
	w := httpDo(r, "POST", "/api/admin/promos", admin, gin.H{
		"code": "SAVE10", "discount_type": "percent", "discount_value": 10,
		"min_order_amount": 100,
		"valid_from":       time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_to":         time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := defaultOrderBody()
	body["promo_code"] = "SAVE10"
	orderID := placeOrder(t, r, customer, body)

	var order models.Order
	require.NoError(t, config.DB.Preload("Items").First(&order, orderID).Error)
	require.Equal(t, 190.0, order.Subtotal) // 50×2 + 90
	require.Equal(t, 50.0, order.DeliveryCharge)
	require.Equal(t, 24.0, order.Discount) // 10% of 240
	require.Equal(t, 216.0, order.TotalPrice)
	require.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.Items, 2)

	// Counter consumed exactly once
	var promo models.PromoCode
	require.NoError(t, config.DB.Where("code = ?", "SAVE10").First(&promo).Error)
	require.Equal(t, 1, promo.UsedCount)

	// No promo → no discount, total = subtotal + delivery
	plainID := placeOrder(t, r, customer, defaultOrderBody())
	var plain models.Order
	require.NoError(t, config.DB.First(&plain, plainID).Error)
	require.Equal(t, 0.0, plain.Discount)
	require.Equal(t, 240.0, plain.TotalPrice)
}

func TestPromoEligibility(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	w := httpDo(r, "POST", "/api/admin/promos", admin, gin.H{
		"code": "BIGMIN", "discount_type": "fixed", "discount_value": 20,
		"min_order_amount": 500,
		"valid_from":       time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_to":         time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Pre-discount total 240 < min 500 → rejected, no order created
	body := defaultOrderBody()
	body["promo_code"] = "BIGMIN"
	w = httpDo(r, "POST", "/api/orders", customer, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	config.DB.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)

	// Unknown code → 404
	body["promo_code"] = "NOPE"
	w = httpDo(r, "POST", "/api/orders", customer, body)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Capped code is exhausted after one use
	w = httpDo(r, "POST", "/api/admin/promos", admin, gin.H{
		"code": "ONCE", "discount_type": "fixed", "discount_value": 10,
		"usage_limit": 1,
		"valid_from":  time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_to":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body["promo_code"] = "ONCE"
	placeOrder(t, r, customer, body)
	w = httpDo(r, "POST", "/api/orders", customer, body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestOrderLifecycle(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)
	workerTok, workerID := register(t, r, "Wes", "wes@example.com", models.RoleWorker)

	orderID := placeOrder(t, r, customer, defaultOrderBody())
	path := fmt.Sprintf("/api/worker/orders/%d/status", orderID)

	// Worker can't move a pending order
	w := httpDo(r, "PUT", path, workerTok, gin.H{"status": "in-transit"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Admin assigns the worker
	w = httpDo(r, "PUT", fmt.Sprintf("/api/admin/orders/%d/assign", orderID), admin,
		gin.H{"worker_id": workerID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, models.StatusAssigned, order.Status)
	require.NotNil(t, order.WorkerID)
	require.Equal(t, workerID, *order.WorkerID)

	// Skipping straight to delivered is rejected and mutates nothing
	w = httpDo(r, "PUT", path, workerTok, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, models.StatusAssigned, order.Status)

	// A different worker can't touch the order
	otherTok, _ := register(t, r, "Oz", "oz@example.com", models.RoleWorker)
	w = httpDo(r, "PUT", path, otherTok, gin.H{"status": "in-transit"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// assigned → in-transit → delivered
	w = httpDo(r, "PUT", path, workerTok, gin.H{"status": "in-transit"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = httpDo(r, "PUT", path, workerTok, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, models.StatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)

	// Cancelling a delivered order fails and leaves the state alone
	w = httpDo(r, "PUT", fmt.Sprintf("/api/orders/%d/cancel", orderID), customer, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, models.StatusDelivered, order.Status)

	// History covers the whole path
	var history []models.OrderStatusHistory
	config.DB.Where("order_id = ?", orderID).Order("id asc").Find(&history)
	require.Len(t, history, 4)
	require.Equal(t, models.StatusDelivered, history[3].ToStatus)
}

func TestCancellationNotificationFanout(t *testing.T) {
	r := setupRouter(t)
	customer, customerID := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)
	register(t, r, "Abe", "abe@example.com", models.RoleAdmin)
	_, workerID := register(t, r, "Wes", "wes@example.com", models.RoleWorker)

	orderID := placeOrder(t, r, customer, defaultOrderBody())
	w := httpDo(r, "PUT", fmt.Sprintf("/api/admin/orders/%d/assign", orderID), admin,
		gin.H{"worker_id": workerID})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, "PUT", fmt.Sprintf("/api/orders/%d/cancel", orderID), customer,
		gin.H{"reason": "changed my mind"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, models.StatusCancelled, order.Status)
	require.Equal(t, "changed my mind", order.CancellationReason)

	countFor := func(userID uint) int64 {
		var n int64
		config.DB.Model(&models.Notification{}).
			Where("user_id = ? AND type = ?", userID, models.NotifyOrderCancelled).
			Count(&n)
		return n
	}
	// Customer always, assigned worker, and one per admin
	require.Equal(t, int64(1), countFor(customerID))
	require.Equal(t, int64(1), countFor(workerID))
	var adminIDs []uint
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Pluck("id", &adminIDs)
	require.Len(t, adminIDs, 2)
	for _, id := range adminIDs {
		require.Equal(t, int64(1), countFor(id))
	}
}

func TestCancelRequiresOwnership(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	other, _ := register(t, r, "Eve", "eve@example.com", models.RoleCustomer)

	orderID := placeOrder(t, r, customer, defaultOrderBody())
	w := httpDo(r, "PUT", fmt.Sprintf("/api/orders/%d/cancel", orderID), other, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	var order models.Order
	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, models.StatusPending, order.Status)
}

func TestAutoAssign(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	var orderIDs []uint
	for i := 0; i < 5; i++ {
		orderIDs = append(orderIDs, placeOrder(t, r, customer, defaultOrderBody()))
	}

	// No workers yet: fails as a whole, nothing assigned
	w := httpDo(r, "POST", "/api/admin/orders/auto-assign", admin, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var pending int64
	config.DB.Model(&models.Order{}).Where("status = ?", models.StatusPending).Count(&pending)
	require.Equal(t, int64(5), pending)

	_, w1 := register(t, r, "Wes", "wes@example.com", models.RoleWorker)
	_, w2 := register(t, r, "Wyn", "wyn@example.com", models.RoleWorker)

	w = httpDo(r, "POST", "/api/admin/orders/auto-assign", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Assigned int `json:"assigned"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 5, resp.Assigned)

	// Strict rotation: order i gets worker i mod 2
	workers := []uint{w1, w2}
	for i, id := range orderIDs {
		var order models.Order
		require.NoError(t, config.DB.First(&order, id).Error)
		require.Equal(t, models.StatusAssigned, order.Status)
		require.NotNil(t, order.WorkerID)
		require.Equal(t, workers[i%2], *order.WorkerID, "order %d", i)
	}
}

func TestLoyaltyRedemption(t *testing.T) {
	r := setupRouter(t)
	customer, customerID := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)

	require.NoError(t, config.DB.Model(&models.User{}).Where("id = ?", customerID).
		Update("loyalty_points", 40).Error)

	// Over-balance redemption rejected with no balance change
	body := defaultOrderBody()
	body["redeem_points"] = 41
	w := httpDo(r, "POST", "/api/orders", customer, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var user models.User
	require.NoError(t, config.DB.First(&user, customerID).Error)
	require.Equal(t, 40, user.LoyaltyPoints)

	// Redeeming exactly the balance zeroes it and discounts the order
	body["redeem_points"] = 40
	orderID := placeOrder(t, r, customer, body)

	require.NoError(t, config.DB.First(&user, customerID).Error)
	require.Zero(t, user.LoyaltyPoints)

	var order models.Order
	require.NoError(t, config.DB.First(&order, orderID).Error)
	require.Equal(t, 40.0, order.Discount)
	require.Equal(t, 200.0, order.TotalPrice)
}

func TestRejectedPlacementKeepsPromoUnused(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	w := httpDo(r, "POST", "/api/admin/promos", admin, gin.H{
		"code": "ONCE", "discount_type": "fixed", "discount_value": 10,
		"usage_limit": 1,
		"valid_from":  time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_to":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Valid code combined with an over-balance redemption: the request is
	// rejected and must not consume a use of the capped code
	body := defaultOrderBody()
	body["promo_code"] = "ONCE"
	body["redeem_points"] = 5
	w = httpDo(r, "POST", "/api/orders", customer, body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var promo models.PromoCode
	require.NoError(t, config.DB.Where("code = ?", "ONCE").First(&promo).Error)
	require.Zero(t, promo.UsedCount)

	var count int64
	config.DB.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)

	// The single use is still available for a clean request
	delete(body, "redeem_points")
	placeOrder(t, r, customer, body)
	require.NoError(t, config.DB.Where("code = ?", "ONCE").First(&promo).Error)
	require.Equal(t, 1, promo.UsedCount)
}

func TestConcurrentRedemptionNeverOverdraws(t *testing.T) {
	r := setupRouter(t)
	customer, customerID := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	require.NoError(t, config.DB.Model(&models.User{}).Where("id = ?", customerID).
		Update("loyalty_points", 40).Error)

	body := defaultOrderBody()
	body["redeem_points"] = 40

	// All requests redeem the full balance at once; the row-level guard must
	// let exactly one through and leave the balance at zero, never negative
	var wg sync.WaitGroup
	codes := make([]int, 4)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httpDo(r, "POST", "/api/orders", customer, body)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		require.Contains(t, []int{http.StatusCreated, http.StatusBadRequest}, code)
		if code == http.StatusCreated {
			created++
		}
	}
	require.Equal(t, 1, created)

	var user models.User
	require.NoError(t, config.DB.First(&user, customerID).Error)
	require.Zero(t, user.LoyaltyPoints)

	var count int64
	config.DB.Model(&models.Order{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestIssueResolutionNotifiesCustomer(t *testing.T) {
	r := setupRouter(t)
	customer, customerID := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	orderID := placeOrder(t, r, customer, defaultOrderBody())

	w := httpDo(r, "POST", "/api/issues", customer, gin.H{
		"order_id": orderID, "type": "quality", "description": "bottle seal was broken",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var issue models.Issue
	require.NoError(t, config.DB.Where("order_id = ?", orderID).First(&issue).Error)

	w = httpDo(r, "PUT", fmt.Sprintf("/api/admin/issues/%d", issue.ID), admin, gin.H{
		"status": "resolved", "resolution": "replacement dispatched",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var n models.Notification
	require.NoError(t, config.DB.
		Where("user_id = ? AND type = ?", customerID, models.NotifySystem).
		First(&n).Error)
	require.NotNil(t, n.OrderID)
	require.Equal(t, issue.OrderID, *n.OrderID)
}

func TestLoyaltyAccrualAndCODSettlement(t *testing.T) {
	r := setupRouter(t)
	customer, customerID := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)
	workerTok, workerID := register(t, r, "Wes", "wes@example.com", models.RoleWorker)

	orderID := placeOrder(t, r, customer, defaultOrderBody()) // total 240

	// COD payment starts pending
	w := httpDo(r, "POST", "/api/payments", customer, gin.H{"order_id": orderID, "method": "cod"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var payment models.Payment
	require.NoError(t, config.DB.Where("order_id = ?", orderID).First(&payment).Error)
	require.Equal(t, models.PaymentPending, payment.Status)
	require.Nil(t, payment.PaidAt)

	// Drive to delivered
	w = httpDo(r, "PUT", fmt.Sprintf("/api/admin/orders/%d/assign", orderID), admin,
		gin.H{"worker_id": workerID})
	require.Equal(t, http.StatusOK, w.Code)
	path := fmt.Sprintf("/api/worker/orders/%d/status", orderID)
	require.Equal(t, http.StatusOK, httpDo(r, "PUT", path, workerTok, gin.H{"status": "in-transit"}).Code)
	require.Equal(t, http.StatusOK, httpDo(r, "PUT", path, workerTok, gin.H{"status": "delivered"}).Code)

	// COD settled at delivery
	require.NoError(t, config.DB.Where("order_id = ?", orderID).First(&payment).Error)
	require.Equal(t, models.PaymentCompleted, payment.Status)
	require.NotNil(t, payment.PaidAt)

	// 1 point per 10 currency of the stored total: 240 → 24
	var user models.User
	require.NoError(t, config.DB.First(&user, customerID).Error)
	require.Equal(t, 24, user.LoyaltyPoints)

	// Card payments settle immediately
	order2 := placeOrder(t, r, customer, defaultOrderBody())
	w = httpDo(r, "POST", "/api/payments", customer, gin.H{"order_id": order2, "method": "card"})
	require.Equal(t, http.StatusCreated, w.Code)
	var card models.Payment
	require.NoError(t, config.DB.Where("order_id = ?", order2).First(&card).Error)
	require.Equal(t, models.PaymentCompleted, card.Status)
	require.NotEmpty(t, card.TransactionID)
}

func TestOrderingPaused(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	w := httpDo(r, "PUT", "/api/admin/settings/ordering", admin, gin.H{"paused": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httpDo(r, "POST", "/api/orders", customer, defaultOrderBody())
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httpDo(r, "PUT", "/api/admin/settings/ordering", admin, gin.H{"paused": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, "POST", "/api/orders", customer, defaultOrderBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRatingsRequireDelivery(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)
	workerTok, workerID := register(t, r, "Wes", "wes@example.com", models.RoleWorker)

	orderID := placeOrder(t, r, customer, defaultOrderBody())

	// Not delivered yet
	w := httpDo(r, "POST", "/api/ratings", customer, gin.H{"order_id": orderID, "overall": 5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, httpDo(r, "PUT",
		fmt.Sprintf("/api/admin/orders/%d/assign", orderID), admin, gin.H{"worker_id": workerID}).Code)
	path := fmt.Sprintf("/api/worker/orders/%d/status", orderID)
	require.Equal(t, http.StatusOK, httpDo(r, "PUT", path, workerTok, gin.H{"status": "in-transit"}).Code)
	require.Equal(t, http.StatusOK, httpDo(r, "PUT", path, workerTok, gin.H{"status": "delivered"}).Code)

	w = httpDo(r, "POST", "/api/ratings", customer, gin.H{
		"order_id": orderID, "overall": 4, "delivery_time": 5, "water_quality": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// One rating per order
	w = httpDo(r, "POST", "/api/ratings", customer, gin.H{"order_id": orderID, "overall": 1})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSubscriptionRun(t *testing.T) {
	r := setupRouter(t)
	customer, customerID := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	admin, _ := register(t, r, "Ada", "ada@example.com", models.RoleAdmin)

	w := httpDo(r, "POST", "/api/subscriptions", customer, gin.H{
		"frequency":        "weekly",
		"delivery_address": "12 Lake Road",
		"items":            []gin.H{{"size": "20L", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var subResp struct {
		Subscription models.Subscription `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &subResp))

	// Not due yet: the run creates nothing
	w = httpDo(r, "POST", "/api/admin/subscriptions/run", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	config.DB.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)

	// Make it due and run again
	require.NoError(t, config.DB.Model(&models.Subscription{}).
		Where("id = ?", subResp.Subscription.ID).
		Update("next_delivery", time.Now().Add(-time.Hour)).Error)
	w = httpDo(r, "POST", "/api/admin/subscriptions/run", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, config.DB.Preload("Items").Where("customer_id = ?", customerID).First(&order).Error)
	require.Equal(t, models.StatusPending, order.Status)
	require.Equal(t, 190.0, order.TotalPrice) // 140 + 50 delivery
	require.Len(t, order.Items, 1)

	// Next delivery advanced past now
	var sub models.Subscription
	require.NoError(t, config.DB.First(&sub, subResp.Subscription.ID).Error)
	require.True(t, sub.NextDelivery.After(time.Now().Add(-time.Hour)))

	// Cancel deactivates
	w = httpDo(r, "PUT", fmt.Sprintf("/api/subscriptions/%d/cancel", sub.ID), customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, config.DB.First(&sub, sub.ID).Error)
	require.False(t, sub.IsActive)
}

func TestRoleGates(t *testing.T) {
	r := setupRouter(t)
	customer, _ := register(t, r, "Cara", "cara@example.com", models.RoleCustomer)
	workerTok, _ := register(t, r, "Wes", "wes@example.com", models.RoleWorker)

	// Customer cannot reach admin surface
	w := httpDo(r, "GET", "/api/admin/orders", customer, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Worker cannot place orders
	w = httpDo(r, "POST", "/api/orders", workerTok, defaultOrderBody())
	require.Equal(t, http.StatusForbidden, w.Code)

	// No token at all
	w = httpDo(r, "GET", "/api/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
