package order

import (
	"go.uber.org/fx"

	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
	orderrepo "github.com/skilllink/skilllink/internal/repository/order"
)

// Module provides the order service to Fx, binding the repositories to the
// narrow interfaces the service consumes.
var Module = fx.Options(
	fx.Provide(func(r *orderrepo.Repository) Store { return r }),
	fx.Provide(func(r *gigrepo.Repository) GigReader { return r }),
	fx.Provide(NewService),
)
