package handlers

import (
	"net/http"
	"time"

	"water-delivery-api/config"
	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/notify"
	"water-delivery-api/pricing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CreateSubscriptionRequest struct {
	Frequency       models.SubscriptionFrequency `json:"frequency" binding:"required,oneof=weekly monthly"`
	DeliveryAddress string                       `json:"delivery_address" binding:"required"`
	TimeSlot        string                       `json:"time_slot"`
	Items           []struct {
		Size     models.BottleSize `json:"size" binding:"required"`
		Quantity int               `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

func nextDelivery(from time.Time, freq models.SubscriptionFrequency) time.Time {
	if freq == models.FrequencyWeekly {
		return from.AddDate(0, 0, 7)
	}
	return from.AddDate(0, 1, 0)
}

// CreateSubscription sets up a recurring order template (customer only)
func CreateSubscription(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate sizes against the price table up front
	for _, it := range req.Items {
		if _, ok := pricing.PriceTable[it.Size]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown bottle size: " + string(it.Size)})
			return
		}
	}

	items := make([]models.SubscriptionItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.SubscriptionItem{Size: it.Size, Quantity: it.Quantity})
	}

	sub := models.Subscription{
		CustomerID:      customerID,
		Frequency:       req.Frequency,
		DeliveryAddress: req.DeliveryAddress,
		TimeSlot:        req.TimeSlot,
		IsActive:        true,
		NextDelivery:    nextDelivery(time.Now(), req.Frequency),
		Items:           items,
	}
	if err := config.DB.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscription created", "subscription": sub})
}

// GetMySubscriptions lists the caller's subscriptions
func GetMySubscriptions(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var subs []models.Subscription
	config.DB.Preload("Items").Where("customer_id = ?", customerID).Find(&subs)
	c.JSON(http.StatusOK, gin.H{"count": len(subs), "subscriptions": subs})
}

// CancelSubscription deactivates a subscription (customer, owner only)
func CancelSubscription(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var sub models.Subscription
	if err := config.DB.First(&sub, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}
	if sub.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This subscription does not belong to you"})
		return
	}
	if !sub.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription is already cancelled"})
		return
	}
	config.DB.Model(&sub).Update("is_active", false)
	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancelled", "subscription_id": sub.ID})
}

// RunSubscriptions materializes every due active subscription into a concrete
// pending order and advances its next-delivery date. Admin-triggered; a cron
// hitting this endpoint stands in for a background scheduler.
func RunSubscriptions(c *gin.Context) {
	now := time.Now()
	var due []models.Subscription
	config.DB.Preload("Items").
		Where("is_active = ? AND next_delivery <= ?", true, now).
		Find(&due)

	created := 0
	for _, sub := range due {
		lines := make([]pricing.Line, 0, len(sub.Items))
		orderItems := make([]models.OrderItem, 0, len(sub.Items))
		for _, it := range sub.Items {
			lines = append(lines, pricing.Line{Size: it.Size, Quantity: it.Quantity})
			orderItems = append(orderItems, models.OrderItem{
				Size:     it.Size,
				Quantity: it.Quantity,
				Price:    pricing.PriceTable[it.Size],
			})
		}
		subtotal, err := pricing.Subtotal(lines)
		if err != nil {
			log.Warn().Uint("subscription_id", sub.ID).Err(err).Msg("subscription skipped")
			continue
		}

		order := models.Order{
			CustomerID:      sub.CustomerID,
			Status:          models.StatusPending,
			DeliveryAddress: sub.DeliveryAddress,
			TimeSlot:        sub.TimeSlot,
			Notes:           "Subscription delivery",
			Subtotal:        subtotal,
			DeliveryCharge:  pricing.DeliveryCharge,
			TotalPrice:      subtotal + pricing.DeliveryCharge,
			Items:           orderItems,
		}
		if err := config.DB.Create(&order).Error; err != nil {
			log.Warn().Uint("subscription_id", sub.ID).Err(err).Msg("subscription order insert failed")
			continue
		}
		created++

		config.DB.Create(&models.OrderStatusHistory{
			OrderID:  order.ID,
			ToStatus: models.StatusPending,
			Note:     "Created from subscription",
		})
		config.DB.Model(&sub).Update("next_delivery", nextDelivery(sub.NextDelivery, sub.Frequency))

		var customer models.User
		if err := config.DB.First(&customer, sub.CustomerID).Error; err == nil {
			notify.StatusChanged(customer, order)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Subscription run complete",
		"due":     len(due),
		"created": created,
	})
}
