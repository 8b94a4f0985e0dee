package handlers

import (
	"net/http"
	"time"

	"water-delivery-api/config"
	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/notify"
	"water-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMyDeliveries returns all orders assigned to the logged-in worker
func GetMyDeliveries(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	var orders []models.Order
	query := config.DB.Preload("Items").Preload("Customer").
		Where("worker_id = ?", workerID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("updated_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// UpdateDeliveryStatus moves an assigned order forward
// (assigned → in-transit → delivered). Only the assigned worker, or an
// admin, may perform the transition.
func UpdateDeliveryStatus(c *gin.Context) {
	callerID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	orderID := c.Param("id")

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	actor := statemachine.ActorWorker
	if role == models.RoleAdmin {
		actor = statemachine.ActorAdmin
	} else if order.WorkerID == nil || *order.WorkerID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not the assigned worker for this order"})
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status, actor); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prevStatus := order.Status
	updates := map[string]interface{}{"status": req.Status}
	var deliveredAt time.Time
	if req.Status == models.StatusDelivered {
		deliveredAt = time.Now()
		updates["delivered_at"] = deliveredAt
	}
	config.DB.Model(&order).Updates(updates)
	order.Status = req.Status
	if req.Status == models.StatusDelivered {
		order.DeliveredAt = &deliveredAt
	}

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prevStatus,
		ToStatus:   req.Status,
		ChangedBy:  callerID,
		Note:       "Status updated by " + actor,
	}
	config.DB.Create(&history)

	if req.Status == models.StatusDelivered {
		settleDelivery(&order)
	}

	var customer models.User
	if err := config.DB.First(&customer, order.CustomerID).Error; err == nil {
		notify.StatusChanged(customer, order)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Order status updated",
		"order_id": order.ID,
		"status":   req.Status,
	})
}

// settleDelivery runs the delivery side effects: complete a pending COD
// payment and accrue loyalty points (1 point per 10 currency of the stored
// total).
func settleDelivery(order *models.Order) {
	now := time.Now()
	config.DB.Model(&models.Payment{}).
		Where("order_id = ? AND method = ? AND status = ?",
			order.ID, models.PaymentCOD, models.PaymentPending).
		Updates(map[string]interface{}{"status": models.PaymentCompleted, "paid_at": now})

	points := int(order.TotalPrice / 10)
	if points > 0 {
		config.DB.Model(&models.User{}).Where("id = ?", order.CustomerID).
			UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", points))
	}
}
