package handlers

import (
	"net/http"

	"water-delivery-api/config"
	"water-delivery-api/models"

	"github.com/gin-gonic/gin"
)

// AdminCreateBranch adds a depot
func AdminCreateBranch(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		City    string `json:"city"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	branch := models.Branch{
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := config.DB.Create(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create branch"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Branch created", "branch": branch})
}

// AdminListBranches lists all depots
func AdminListBranches(c *gin.Context) {
	var branches []models.Branch
	config.DB.Find(&branches)
	c.JSON(http.StatusOK, gin.H{"count": len(branches), "branches": branches})
}

// AdminUpdateBranch edits a depot
func AdminUpdateBranch(c *gin.Context) {
	var branch models.Branch
	if err := config.DB.First(&branch, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		return
	}
	var req struct {
		Name     string `json:"name"`
		Address  string `json:"address"`
		City     string `json:"city"`
		Phone    string `json:"phone"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		config.DB.Model(&branch).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branch updated", "branch": branch})
}

// AdminCreatePricingRule adds a zone delivery-charge rule
func AdminCreatePricingRule(c *gin.Context) {
	var req struct {
		Zone           string  `json:"zone" binding:"required"`
		MaxDistanceKm  float64 `json:"max_distance_km"`
		DeliveryCharge float64 `json:"delivery_charge" binding:"required,gte=0"`
		BranchID       *uint   `json:"branch_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule := models.PricingRule{
		Zone:           req.Zone,
		MaxDistanceKm:  req.MaxDistanceKm,
		DeliveryCharge: req.DeliveryCharge,
		BranchID:       req.BranchID,
		IsActive:       true,
	}
	if err := config.DB.Create(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pricing rule"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Pricing rule created", "rule": rule})
}

// AdminListPricingRules lists zone delivery-charge rules
func AdminListPricingRules(c *gin.Context) {
	var rules []models.PricingRule
	config.DB.Find(&rules)
	c.JSON(http.StatusOK, gin.H{"count": len(rules), "rules": rules})
}

// AdminDeletePricingRule removes a rule
func AdminDeletePricingRule(c *gin.Context) {
	var rule models.PricingRule
	if err := config.DB.First(&rule, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pricing rule not found"})
		return
	}
	config.DB.Delete(&rule)
	c.JSON(http.StatusOK, gin.H{"message": "Pricing rule deleted", "id": rule.ID})
}
