package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Statuses() OrderStatusRepository
	Transactions() TransactionRepository
	WebhookEvents() WebhookEventRepository
}
