package handlers

import (
	"net/http"

	"water-delivery-api/config"
	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/notify"

	"github.com/gin-gonic/gin"
)

// CreateRating records customer feedback for a delivered order
func CreateRating(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req struct {
		OrderID      uint   `json:"order_id" binding:"required"`
		Overall      int    `json:"overall" binding:"required,min=1,max=5"`
		DeliveryTime int    `json:"delivery_time" binding:"omitempty,min=1,max=5"`
		WaterQuality int    `json:"water_quality" binding:"omitempty,min=1,max=5"`
		Comment      string `json:"comment"`
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
	if order.Status != models.StatusDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only delivered orders can be rated"})
		return
	}

	var existing models.Rating
	if err := config.DB.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Order has already been rated"})
		return
	}

	rating := models.Rating{
		OrderID:      order.ID,
		CustomerID:   customerID,
		WorkerID:     order.WorkerID,
		Overall:      req.Overall,
		DeliveryTime: req.DeliveryTime,
		WaterQuality: req.WaterQuality,
		Comment:      req.Comment,
	}
	if err := config.DB.Create(&rating).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating saved", "rating": rating})
}

// CreateIssue files a ticket against one of the caller's orders
func CreateIssue(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req struct {
		OrderID     uint             `json:"order_id" binding:"required"`
		Type        models.IssueType `json:"type" binding:"required,oneof=delivery quality billing other"`
		Description string           `json:"description" binding:"required"`
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

	issue := models.Issue{
		CustomerID:  customerID,
		OrderID:     order.ID,
		Type:        req.Type,
		Description: req.Description,
		Status:      models.IssuePending,
	}
	if err := config.DB.Create(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to file issue"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Issue filed", "issue": issue})
}

// GetMyIssues lists the caller's issues
func GetMyIssues(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var issues []models.Issue
	config.DB.Where("customer_id = ?", customerID).Order("created_at desc").Find(&issues)
	c.JSON(http.StatusOK, gin.H{"count": len(issues), "issues": issues})
}

// AdminGetAllIssues lists every issue, optionally filtered by status
func AdminGetAllIssues(c *gin.Context) {
	var issues []models.Issue
	query := config.DB
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&issues)
	c.JSON(http.StatusOK, gin.H{"count": len(issues), "issues": issues})
}

// issueFlow defines the allowed ticket status moves
var issueFlow = map[models.IssueStatus][]models.IssueStatus{
	models.IssuePending:       {models.IssueInvestigating, models.IssueResolved, models.IssueRejected},
	models.IssueInvestigating: {models.IssueResolved, models.IssueRejected},
}

// AdminUpdateIssue moves a ticket through pending → investigating →
// resolved/rejected, recording resolution and resolver
func AdminUpdateIssue(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	var issue models.Issue
	if err := config.DB.First(&issue, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	var req struct {
		Status     models.IssueStatus `json:"status" binding:"required,oneof=investigating resolved rejected"`
		Resolution string             `json:"resolution"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := false
	for _, next := range issueFlow[issue.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Invalid issue status transition",
			"current_status": issue.Status,
		})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.IssueResolved || req.Status == models.IssueRejected {
		updates["resolution"] = req.Resolution
		updates["resolved_by"] = adminID
	}
	config.DB.Model(&issue).Updates(updates)

	if req.Status == models.IssueResolved || req.Status == models.IssueRejected {
		notify.Record(issue.CustomerID, models.NotifySystem,
			"Issue "+string(req.Status),
			"Your reported issue has been "+string(req.Status)+".", &issue.OrderID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated", "issue": issue})
}

// CreateBottleReturn records empty bottles handed back by the customer
func CreateBottleReturn(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req struct {
		OrderID  *uint                   `json:"order_id"`
		Size     models.BottleSize       `json:"size" binding:"required,oneof=5L 10L 20L"`
		Quantity int                     `json:"quantity" binding:"required,min=1"`
		Type     models.BottleReturnType `json:"type" binding:"required,oneof=deposit exchange"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.OrderID != nil {
		var order models.Order
		if err := config.DB.First(&order, *req.OrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if order.CustomerID != customerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
			return
		}
	}

	ret := models.BottleReturn{
		CustomerID: customerID,
		OrderID:    req.OrderID,
		Size:       req.Size,
		Quantity:   req.Quantity,
		Type:       req.Type,
	}
	if err := config.DB.Create(&ret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record bottle return"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bottle return recorded", "bottle_return": ret})
}

// GetMyNotifications lists the caller's notifications, newest first
func GetMyNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var notifications []models.Notification
	config.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&notifications)
	c.JSON(http.StatusOK, gin.H{"count": len(notifications), "notifications": notifications})
}

// MarkNotificationRead flips the read flag on one of the caller's notifications
func MarkNotificationRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var n models.Notification
	if err := config.DB.First(&n, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if n.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This notification does not belong to you"})
		return
	}
	config.DB.Model(&n).Update("read", true)
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read", "id": n.ID})
}
