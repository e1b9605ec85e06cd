package order

// getForwardPaths returns, per kind, the strictly sequential forward path.
func getForwardPaths() map[Kind][]Status {
	return map[Kind][]Status{
		Sales:    {Quotation, Confirmed, Preparing, InDelivery, Received, Fulfilled},
		Purchase: {Quotation, Confirmed, Received, Fulfilled},
	}
}

// getCancellable returns, per kind, the statuses from which CANCELLED is reachable.
func getCancellable() map[Kind]map[Status]bool {
	return map[Kind]map[Status]bool{
		Sales:    {Quotation: true, Confirmed: true, Preparing: true},
		Purchase: {Quotation: true, Confirmed: true},
	}
}

// InitialStatus is the status of snapshot 0 for a new order of the given kind.
// It returns Unknown for an invalid kind.
func InitialStatus(kind Kind) Status {
	path, ok := getForwardPaths()[kind]
	if !ok {
		return Unknown
	}
	return path[0]
}

// Statuses lists every status of the kind's workflow: the forward path followed by CANCELLED.
func Statuses(kind Kind) []Status {
	path, ok := getForwardPaths()[kind]
	if !ok {
		return nil
	}
	return append(path, Cancelled)
}

// NextStatus returns the immediate forward successor of from, if there is one.
func NextStatus(kind Kind, from Status) (Status, bool) {
	path := getForwardPaths()[kind]
	for i := 0; i < len(path)-1; i++ {
		if path[i] == from {
			return path[i+1], true
		}
	}
	return Unknown, false
}

// CanTransition reports whether an order of the given kind may move from one
// status to another. Only the immediate forward successor and, from the
// cancellable statuses, CANCELLED are legal. A status is never its own successor
// and nothing leaves a terminal status.
func CanTransition(kind Kind, from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if next, ok := NextStatus(kind, from); ok && next == to {
		return true
	}
	return to == Cancelled && getCancellable()[kind][from]
}
