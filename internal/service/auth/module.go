package auth

import (
	"go.uber.org/fx"

	userrepo "github.com/skilllink/skilllink/internal/repository/user"
)

// Module provides the auth service to Fx.
var Module = fx.Options(
	fx.Provide(func(r *userrepo.Repository) UserStore { return r }),
	fx.Provide(NewService),
)
