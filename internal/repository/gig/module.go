package gig

import "go.uber.org/fx"

// Module provides the gig repository to Fx.
var Module = fx.Provide(NewRepository)
