package http

import (
	"go.uber.org/fx"

	authtransport "github.com/skilllink/skilllink/internal/transport/http/auth"
	gigtransport "github.com/skilllink/skilllink/internal/transport/http/gig"
	"github.com/skilllink/skilllink/internal/transport/http/middleware"
	ordertransport "github.com/skilllink/skilllink/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	middleware.Module,
	authtransport.Module,
	gigtransport.Module,
	ordertransport.Module,
)
