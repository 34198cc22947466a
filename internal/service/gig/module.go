package gig

import (
	"go.uber.org/fx"

	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
)

// Module provides the gig service to Fx.
var Module = fx.Options(
	fx.Provide(func(r *gigrepo.Repository) Store { return r }),
	fx.Provide(NewService),
)
