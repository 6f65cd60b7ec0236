package enums

// OutboxEventType names the domain events queued for publication.
type OutboxEventType string

const (
	EventOrderCreated OutboxEventType = "order.created"
	EventOrderPaid    OutboxEventType = "order.paid"
	EventOrderFailed  OutboxEventType = "order.payment_failed"
	EventOrderDeleted OutboxEventType = "order.deleted"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)
