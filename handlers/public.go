package handlers

import (
	"net/http"

	"water-delivery-api/pricing"
	"water-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetPrices returns the bottle price table and delivery charge (public)
func GetPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"prices":          pricing.PriceTable,
		"delivery_charge": pricing.DeliveryCharge,
	})
}

// GetStateMachineInfo returns the full order lifecycle for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	var info []gin.H
	for _, t := range statemachine.GetAllTransitions() {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []string{"delivered", "cancelled"},
		"description":     "Water Delivery Order Lifecycle State Machine",
	})
}
