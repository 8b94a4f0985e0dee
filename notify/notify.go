// Package notify fans lifecycle side effects out to in-app notifications,
// email, and the realtime hub. Everything here is fire-and-forget: the state
// mutation that triggered the dispatch is the source of truth, and delivery
// failures are logged and dropped.
package notify

import (
	"sync"

	"water-delivery-api/config"
	"water-delivery-api/models"
	"water-delivery-api/realtime"

	"github.com/rs/zerolog/log"
)

// Hub is the realtime transport, wired up in main. Nil in tests that don't
// care about websocket delivery.
var Hub *realtime.Hub

// eventNames maps each notification type to its realtime wire name
var eventNames = map[models.NotificationType]string{
	models.NotifyOrderCreated:   realtime.EventOrderCreated,
	models.NotifyOrderAssigned:  realtime.EventOrderAssigned,
	models.NotifyNewAssignment:  realtime.EventNewOrderAssigned,
	models.NotifyStatusUpdated:  realtime.EventOrderStatusUpdated,
	models.NotifyOrderCancelled: realtime.EventOrderCancelled,
	models.NotifySystem:         realtime.EventSystem,
}

// Record creates one in-app notification and mirrors it on the user's
// realtime channel.
func Record(userID uint, typ models.NotificationType, title, message string, orderID *uint) {
	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		OrderID: orderID,
	}
	if err := config.DB.Create(&n).Error; err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Str("type", string(typ)).
			Msg("notification insert failed")
		return
	}
	name, ok := eventNames[typ]
	if !ok {
		name = realtime.EventSystem
	}
	ev := realtime.Event{Type: name, Message: message}
	if orderID != nil {
		ev.OrderID = *orderID
	}
	Hub.Publish(userID, ev)
}

// RecordAll sends the same notification to every listed user in parallel.
// Sends are independent: one failure neither blocks nor fails the others.
func RecordAll(userIDs []uint, typ models.NotificationType, title, message string, orderID *uint) {
	var wg sync.WaitGroup
	for _, id := range userIDs {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			Record(uid, typ, title, message, orderID)
		}(id)
	}
	wg.Wait()
}

// StatusChanged notifies the customer about a lifecycle transition and mails
// the fixed per-status template.
func StatusChanged(customer models.User, order models.Order) {
	title, msg := statusCopy(order)
	typ := models.NotifyStatusUpdated
	switch order.Status {
	case models.StatusPending:
		typ = models.NotifyOrderCreated
	case models.StatusAssigned:
		typ = models.NotifyOrderAssigned
	case models.StatusCancelled:
		typ = models.NotifyOrderCancelled
	}
	Record(customer.ID, typ, title, msg, &order.ID)
	SendStatusEmail(customer, order.ID, order.Status)
}

func statusCopy(order models.Order) (title, message string) {
	switch order.Status {
	case models.StatusPending:
		return "Order placed", "Your order has been placed and is awaiting assignment."
	case models.StatusAssigned:
		return "Worker assigned", "A delivery worker has been assigned to your order."
	case models.StatusInTransit:
		return "Out for delivery", "Your order is on the way."
	case models.StatusDelivered:
		return "Order delivered", "Your order has been delivered. Enjoy!"
	case models.StatusCancelled:
		return "Order cancelled", "Your order has been cancelled."
	}
	return "Order update", "Your order status changed."
}

// WorkerAssigned tells a worker they have a new delivery
func WorkerAssigned(workerID, orderID uint) {
	Record(workerID, models.NotifyNewAssignment,
		"New delivery assigned", "You have been assigned a new delivery order.", &orderID)
	Hub.Publish(workerID, realtime.Event{
		Type:    realtime.EventNewOrderAssigned,
		OrderID: orderID,
	})
}

// Cancelled fans a cancellation out to everyone affected: the customer
// always, the assigned worker when there is one, and every admin.
func Cancelled(order models.Order, customer models.User, adminIDs []uint) {
	StatusChanged(customer, order)
	if order.WorkerID != nil {
		Record(*order.WorkerID, models.NotifyOrderCancelled,
			"Delivery cancelled", "An order assigned to you was cancelled.", &order.ID)
	}
	RecordAll(adminIDs, models.NotifyOrderCancelled,
		"Order cancelled", "A customer cancelled an order.", &order.ID)
}
