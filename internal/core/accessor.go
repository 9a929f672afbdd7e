package core

import (
	"context"

	"havenlist/pkg/domain"
)

// Accessor is the surface handed to the presentation layer: read access to
// the three collections and the six mutations.
type Accessor interface {
	Homes() []domain.ChildrensHome
	Donations() []domain.Donation
	Visits() []domain.Visit

	AddHome(ctx context.Context, f domain.HomeFields) (domain.ChildrensHome, error)
	UpdateHome(ctx context.Context, id string, patch domain.HomePatch) (bool, error)
	DeleteHome(ctx context.Context, id string) (bool, error)
	AddDonation(ctx context.Context, f domain.DonationFields) (domain.Donation, error)
	AddVisit(ctx context.Context, f domain.VisitFields) (domain.Visit, error)
	AddReview(ctx context.Context, homeID string, f domain.ReviewFields) (domain.Review, bool, error)
}

type accessorKey struct{}

// WithAccessor attaches a to ctx.
func WithAccessor(ctx context.Context, a Accessor) context.Context {
	return context.WithValue(ctx, accessorKey{}, a)
}

// AccessorFrom returns the accessor attached to ctx. It panics with
// domain.ErrNoContainer when none is attached: reaching for the container
// outside its lifecycle is a composition bug, not a runtime condition.
func AccessorFrom(ctx context.Context) Accessor {
	a, ok := ctx.Value(accessorKey{}).(Accessor)
	if !ok || a == nil {
		panic(domain.ErrNoContainer)
	}
	return a
}

// Provide opens a container over slots, runs fn with the accessor attached
// to its context and closes the container when fn returns. The container is
// unusable after Provide returns.
func Provide(ctx context.Context, slots domain.SlotStore, fn func(ctx context.Context) error, opts ...Option) (err error) {
	c, err := Open(ctx, slots, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(WithAccessor(ctx, c))
}
