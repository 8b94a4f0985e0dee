package handlers

import (
	"net/http"

	"water-delivery-api/assignment"
	"water-delivery-api/config"
	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/notify"
	"water-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

// AdminGetAllOrders returns all orders with full detail — admin only
func AdminGetAllOrders(c *gin.Context) {
	var orders []models.Order
	query := config.DB.Preload("Items").
		Preload("Customer").Preload("Worker").Preload("StatusHistory")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if workerID := c.Query("worker_id"); workerID != "" {
		query = query.Where("worker_id = ?", workerID)
	}

	query.Order("created_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// AssignOrder lets an admin hand a pending order to a specific worker
func AssignOrder(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var req struct {
		WorkerID uint `json:"worker_id" binding:"required"`
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

	var worker models.User
	if err := config.DB.First(&worker, req.WorkerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worker not found"})
		return
	}
	if worker.Role != models.RoleWorker {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a delivery worker"})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusAssigned, statemachine.ActorAdmin); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Cannot assign order",
			"current_status": order.Status,
			"reason":         err.Error(),
		})
		return
	}

	prevStatus := order.Status
	config.DB.Model(&order).Updates(map[string]interface{}{
		"status":    models.StatusAssigned,
		"worker_id": req.WorkerID,
	})
	order.Status = models.StatusAssigned
	order.WorkerID = &req.WorkerID

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prevStatus,
		ToStatus:   models.StatusAssigned,
		ChangedBy:  adminID,
		Note:       "Assigned by admin",
	}
	config.DB.Create(&history)

	var customer models.User
	if err := config.DB.First(&customer, order.CustomerID).Error; err == nil {
		notify.StatusChanged(customer, order)
	}
	notify.WorkerAssigned(worker.ID, order.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Order assigned",
		"order_id":  order.ID,
		"worker_id": worker.ID,
	})
}

// AutoAssignOrders distributes every pending order across the worker pool in
// strict round-robin. Workers are taken in ascending id order so the
// rotation is deterministic. Fails as a whole only when no workers exist;
// per-order notification failures are logged and skipped.
func AutoAssignOrders(c *gin.Context) {
	adminID := middleware.GetUserID(c)

	var pending []models.Order
	config.DB.Where("status = ?", models.StatusPending).
		Order("created_at asc").Find(&pending)

	var workerIDs []uint
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleWorker).
		Order("id asc").Pluck("id", &workerIDs)

	orderIDs := make([]uint, 0, len(pending))
	ordersByID := make(map[uint]models.Order, len(pending))
	for _, o := range pending {
		orderIDs = append(orderIDs, o.ID)
		ordersByID[o.ID] = o
	}

	pairs, err := assignment.RoundRobin(orderIDs, workerIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assigned := 0
	for _, p := range pairs {
		res := config.DB.Model(&models.Order{}).
			Where("id = ? AND status = ?", p.OrderID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":    models.StatusAssigned,
				"worker_id": p.WorkerID,
			})
		if res.Error != nil || res.RowsAffected == 0 {
			log.Warn().Uint("order_id", p.OrderID).Err(res.Error).Msg("auto-assign skipped order")
			continue
		}
		assigned++

		config.DB.Create(&models.OrderStatusHistory{
			OrderID:    p.OrderID,
			FromStatus: models.StatusPending,
			ToStatus:   models.StatusAssigned,
			ChangedBy:  adminID,
			Note:       "Auto-assigned",
		})

		order := ordersByID[p.OrderID]
		order.Status = models.StatusAssigned
		workerID := p.WorkerID
		order.WorkerID = &workerID

		var customer models.User
		if err := config.DB.First(&customer, order.CustomerID).Error; err == nil {
			notify.StatusChanged(customer, order)
		} else {
			log.Warn().Uint("order_id", p.OrderID).Err(err).Msg("auto-assign customer notify failed")
		}
		notify.WorkerAssigned(p.WorkerID, p.OrderID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Auto-assignment complete",
		"assigned": assigned,
		"workers":  len(workerIDs),
	})
}

// AdminGetAllUsers returns all users — admin only
func AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := config.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminDeleteUser hard-deletes a user account
func AdminDeleteUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	config.DB.Delete(&user)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "user_id": user.ID})
}

// GetWorkers lists all delivery workers
func GetWorkers(c *gin.Context) {
	var workers []models.User
	config.DB.Where("role = ?", models.RoleWorker).Order("id asc").Find(&workers)
	c.JSON(http.StatusOK, gin.H{"count": len(workers), "workers": workers})
}

// UpdateWorker edits a worker's branch/contact details
func UpdateWorker(c *gin.Context) {
	var worker models.User
	if err := config.DB.First(&worker, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worker not found"})
		return
	}
	if worker.Role != models.RoleWorker {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a delivery worker"})
		return
	}
	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		BranchID *uint  `json:"branch_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.BranchID != nil {
		updates["branch_id"] = *req.BranchID
	}
	if len(updates) > 0 {
		config.DB.Model(&worker).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Worker updated", "worker": worker})
}

// SetOrderingPaused flips the persisted ordering pause flag
func SetOrderingPaused(c *gin.Context) {
	var req struct {
		Paused *bool `json:"paused" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value := "false"
	if *req.Paused {
		value = "true"
	}
	setting := models.Setting{Key: models.SettingOrderingPaused, Value: value}
	if err := config.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ordering pause flag updated", "paused": *req.Paused})
}
