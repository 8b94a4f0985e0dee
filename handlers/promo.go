package handlers

import (
	"net/http"
	"time"

	"water-delivery-api/config"
	"water-delivery-api/models"

	"github.com/gin-gonic/gin"
)

type PromoRequest struct {
	Code           string              `json:"code" binding:"required"`
	DiscountType   models.DiscountType `json:"discount_type" binding:"required,oneof=percent fixed"`
	DiscountValue  float64             `json:"discount_value" binding:"required,gt=0"`
	MinOrderAmount float64             `json:"min_order_amount"`
	ValidFrom      time.Time           `json:"valid_from"`
	ValidTo        time.Time           `json:"valid_to"`
	UsageLimit     int                 `json:"usage_limit"`
	IsActive       *bool               `json:"is_active"`
}

// AdminCreatePromo creates a promo code
func AdminCreatePromo(c *gin.Context) {
	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DiscountType == models.DiscountPercent && req.DiscountValue > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Percent discount cannot exceed 100"})
		return
	}

	var existing models.PromoCode
	if err := config.DB.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Promo code already exists"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	promo := models.PromoCode{
		Code:           req.Code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
		UsageLimit:     req.UsageLimit,
		IsActive:       active,
	}
	if err := config.DB.Create(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo code"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Promo code created", "promo": promo})
}

// AdminListPromos lists all promo codes
func AdminListPromos(c *gin.Context) {
	var promos []models.PromoCode
	config.DB.Order("created_at desc").Find(&promos)
	c.JSON(http.StatusOK, gin.H{"count": len(promos), "promos": promos})
}

// AdminUpdatePromo edits a promo code's value, window, cap or active flag
func AdminUpdatePromo(c *gin.Context) {
	var promo models.PromoCode
	if err := config.DB.First(&promo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo code not found"})
		return
	}

	var req struct {
		DiscountValue  *float64   `json:"discount_value"`
		MinOrderAmount *float64   `json:"min_order_amount"`
		ValidFrom      *time.Time `json:"valid_from"`
		ValidTo        *time.Time `json:"valid_to"`
		UsageLimit     *int       `json:"usage_limit"`
		IsActive       *bool      `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.DiscountValue != nil {
		updates["discount_value"] = *req.DiscountValue
	}
	if req.MinOrderAmount != nil {
		updates["min_order_amount"] = *req.MinOrderAmount
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidTo != nil {
		updates["valid_to"] = *req.ValidTo
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		config.DB.Model(&promo).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promo code updated", "promo": promo})
}

// AdminDeletePromo removes a promo code
func AdminDeletePromo(c *gin.Context) {
	var promo models.PromoCode
	if err := config.DB.First(&promo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo code not found"})
		return
	}
	config.DB.Delete(&promo)
	c.JSON(http.StatusOK, gin.H{"message": "Promo code deleted", "id": promo.ID})
}
