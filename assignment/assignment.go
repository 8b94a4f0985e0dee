package assignment

import "errors"

// ErrNoWorkers is returned when auto-assignment finds no worker accounts
var ErrNoWorkers = errors.New("no workers available for assignment")

// Pair maps one pending order to the worker chosen for it
type Pair struct {
	OrderID  uint
	WorkerID uint
}

// RoundRobin pairs each pending order with a worker in strict rotation:
// order i gets worker i mod M. Callers pass worker ids in a canonical order
// (ascending id) so the rotation is deterministic.
func RoundRobin(orderIDs, workerIDs []uint) ([]Pair, error) {
	if len(workerIDs) == 0 {
		return nil, ErrNoWorkers
	}
	pairs := make([]Pair, 0, len(orderIDs))
	for i, orderID := range orderIDs {
		pairs = append(pairs, Pair{
			OrderID:  orderID,
			WorkerID: workerIDs[i%len(workerIDs)],
		})
	}
	return pairs, nil
}
