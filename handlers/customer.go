package handlers

import (
	"errors"
	"net/http"
	"time"

	"water-delivery-api/config"
	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/notify"
	"water-delivery-api/pricing"
	"water-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var errInsufficientPoints = errors.New("not enough loyalty points")

type PlaceOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	TimeSlot        string `json:"time_slot"`
	Notes           string `json:"notes"`
	PromoCode       string `json:"promo_code"`
	RedeemPoints    int    `json:"redeem_points"`
	Items           []struct {
		Size     models.BottleSize `json:"size" binding:"required"`
		Quantity int               `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

// orderingPaused reads the persisted pause flag. Stored in the settings
// table so it survives restarts and is shared across instances.
func orderingPaused() bool {
	var s models.Setting
	if err := config.DB.First(&s, "key = ?", models.SettingOrderingPaused).Error; err != nil {
		return false
	}
	return s.Value == "true"
}

// PlaceOrder creates a new order (customer only)
func PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if orderingPaused() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ordering is temporarily paused"})
		return
	}

	// Build order items and calculate pre-discount total
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, pricing.Line{Size: it.Size, Quantity: it.Quantity})
	}
	subtotal, err := pricing.Subtotal(lines)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preDiscount := subtotal + pricing.DeliveryCharge

	// Promo code: pure validation only at this point. The usage counter is
	// consumed inside the write transaction below, so a request rejected
	// further down never burns a use.
	var discount float64
	var promo *models.PromoCode
	if req.PromoCode != "" {
		var p models.PromoCode
		if err := config.DB.Where("code = ?", req.PromoCode).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promo code not found"})
			return
		}
		if err := pricing.ValidatePromo(&p, preDiscount, time.Now()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		discount = pricing.Discount(&p, preDiscount)
		promo = &p
	}

	// Loyalty redemption: 1 point = 1 currency unit off. Over-balance
	// requests are rejected with no balance change.
	var customer models.User
	if err := config.DB.First(&customer, customerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if req.RedeemPoints > 0 {
		if req.RedeemPoints > customer.LoyaltyPoints {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough loyalty points"})
			return
		}
		discount += float64(req.RedeemPoints)
	}

	total := preDiscount - discount
	if total < 0 {
		total = 0
	}

	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		orderItems = append(orderItems, models.OrderItem{
			Size:     l.Size,
			Quantity: l.Quantity,
			Price:    pricing.PriceTable[l.Size],
		})
	}

	order := models.Order{
		CustomerID:      customerID,
		Status:          models.StatusPending,
		DeliveryAddress: req.DeliveryAddress,
		TimeSlot:        req.TimeSlot,
		Notes:           req.Notes,
		Subtotal:        subtotal,
		DeliveryCharge:  pricing.DeliveryCharge,
		Discount:        discount,
		TotalPrice:      total,
		PromoCode:       req.PromoCode,
		PointsRedeemed:  req.RedeemPoints,
		Items:           orderItems,
	}

	// Every write in one transaction: the point decrement re-checks the
	// balance at the row (a stale read above must not drive it negative),
	// and a failure at any step rolls back the promo use and the balance.
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		if req.RedeemPoints > 0 {
			res := tx.Model(&models.User{}).
				Where("id = ? AND loyalty_points >= ?", customerID, req.RedeemPoints).
				UpdateColumn("loyalty_points", gorm.Expr("loyalty_points - ?", req.RedeemPoints))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errInsufficientPoints
			}
		}
		if promo != nil {
			if err := pricing.RedeemPromo(tx, promo.ID); err != nil {
				return err
			}
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: customerID,
			Note:      "Order placed by customer",
		}
		return tx.Create(&history).Error
	})
	switch {
	case txErr == nil:
	case errors.Is(txErr, errInsufficientPoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough loyalty points"})
		return
	case errors.Is(txErr, pricing.ErrPromoUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": txErr.Error()})
		return
	default:
		log.Error().Err(txErr).Msg("order insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	notify.StatusChanged(customer, order)

	config.DB.Preload("Items").First(&order, order.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var orders []models.Order
	config.DB.Preload("Items").Preload("Worker").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func GetOrderDetail(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := config.DB.
		Preload("Items").
		Preload("StatusHistory").
		Preload("Worker").
		First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels an order (customer can cancel while pending or assigned)
func CancelOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	var order models.Order
	if err := config.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Cannot cancel order",
			"reason":        err.Error(),
			"current_state": order.Status,
		})
		return
	}

	prevStatus := order.Status
	config.DB.Model(&order).Updates(map[string]interface{}{
		"status":              models.StatusCancelled,
		"cancellation_reason": req.Reason,
	})
	order.Status = models.StatusCancelled

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prevStatus,
		ToStatus:   models.StatusCancelled,
		ChangedBy:  customerID,
		Note:       "Order cancelled by customer",
	}
	config.DB.Create(&history)

	// Fan out: customer always, assigned worker if any, every admin
	var customer models.User
	config.DB.First(&customer, customerID)
	var adminIDs []uint
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Pluck("id", &adminIDs)
	notify.Cancelled(order, customer, adminIDs)

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}

// CreatePayment records a payment for one of the caller's orders. COD stays
// pending until delivery; other methods settle immediately.
func CreatePayment(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req struct {
		OrderID uint                 `json:"order_id" binding:"required"`
		Method  models.PaymentMethod `json:"method" binding:"required,oneof=cod card wallet"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	var existing models.Payment
	if err := config.DB.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already recorded for this order"})
		return
	}

	payment := models.Payment{
		OrderID:    order.ID,
		CustomerID: customerID,
		Method:     req.Method,
		Amount:     order.TotalPrice, // stored total is the source of truth
		Status:     models.PaymentPending,
	}
	if req.Method != models.PaymentCOD {
		now := time.Now()
		payment.Status = models.PaymentCompleted
		payment.PaidAt = &now
		payment.TransactionID = uuid.NewString()
	}

	if err := config.DB.Create(&payment).Error; err != nil {
		log.Error().Err(err).Msg("payment insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Payment recorded", "payment": payment})
}
