package repository

import "context"

// Factory describes access to the domain repositories.
type Factory interface {
	Users() UserRepository
	Quotations() QuotationRepository
	Orders() OrderRepository
	CreditProfiles() CreditProfileRepository
	SalesAggregates() SalesAggregateRepository
	Overrides() OverrideRepository
	Payments() PaymentRepository
	Fulfilments() FulfilmentRepository
	Transitions() TransitionRepository
}

// UnitOfWork runs fn against a repository factory whose writes commit or
// roll back as one atomic unit. Every state transition goes through it so
// the mutation and its audit row land together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Factory) error) error
}
