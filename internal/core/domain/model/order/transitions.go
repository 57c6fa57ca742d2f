package order

type edge struct {
	from Status
	to   Status
}

// adjacency lists the normal edges each role may take. Anything absent is illegal
// for that role; admins bypass it only through Order.Force.
var adjacency = map[Role]map[edge]struct{}{
	RoleClient: edges(
		edge{Draft, PendingProConfirmation},
		edge{Draft, Canceled},
		edge{PendingProConfirmation, Canceled},
		edge{Accepted, Canceled},
		edge{Confirmed, Canceled},
		edge{AwaitingClientApproval, Completed},
		edge{AwaitingClientApproval, Disputed},
		edge{Completed, Disputed},
	),
	RolePro: edges(
		edge{PendingProConfirmation, Accepted},
		edge{PendingProConfirmation, Rejected},
		edge{Confirmed, InProgress},
		edge{InProgress, AwaitingClientApproval},
		edge{AwaitingClientApproval, Disputed},
	),
	RoleSystem: edges(
		edge{Accepted, Confirmed},
		edge{Completed, Paid},
	),
	RoleAdmin: edges(
		edge{Disputed, Completed},
		edge{Disputed, Canceled},
	),
}

func edges(list ...edge) map[edge]struct{} {
	m := make(map[edge]struct{}, len(list))
	for _, e := range list {
		m[e] = struct{}{}
	}
	return m
}

// CanTransition reports whether role may move an order from one status to another.
func CanTransition(role Role, from, to Status) bool {
	_, ok := adjacency[role][edge{from, to}]
	return ok
}

// AllowedTargets lists the statuses role may move an order to from the given status.
func AllowedTargets(role Role, from Status) []Status {
	targets := make([]Status, 0)
	for _, s := range AllStatuses() {
		if CanTransition(role, from, s) {
			targets = append(targets, s)
		}
	}
	return targets
}

// IsLegalStep reports whether any role may take the edge. Used to check that a
// recorded status history is monotonic along the graph.
func IsLegalStep(from, to Status) bool {
	for role := range adjacency {
		if CanTransition(role, from, to) {
			return true
		}
	}
	return false
}
