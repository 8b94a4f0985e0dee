package statemachine

import (
	"errors"

	"water-delivery-api/models"
)

// Actor names for transition permission checks
const (
	ActorCustomer = "customer"
	ActorWorker   = "worker"
	ActorAdmin    = "admin"
	ActorSystem   = "system"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string // "customer", "worker", "admin", "system"
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Admin assigns a worker, or auto-assignment does it as "system"
	{From: models.StatusPending, To: models.StatusAssigned, Actor: ActorAdmin},
	{From: models.StatusPending, To: models.StatusAssigned, Actor: ActorSystem},
	// Assigned worker drives the delivery forward; admin may step in
	{From: models.StatusAssigned, To: models.StatusInTransit, Actor: ActorWorker},
	{From: models.StatusAssigned, To: models.StatusInTransit, Actor: ActorAdmin},
	{From: models.StatusInTransit, To: models.StatusDelivered, Actor: ActorWorker},
	{From: models.StatusInTransit, To: models.StatusDelivered, Actor: ActorAdmin},
	// Customer can cancel only before the order is on the road
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusAssigned, To: models.StatusCancelled, Actor: ActorCustomer},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if transitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
