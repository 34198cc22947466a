package app

import (
	"go.uber.org/fx"

	"github.com/skilllink/skilllink/internal/auth/password"
	"github.com/skilllink/skilllink/internal/auth/token"
	"github.com/skilllink/skilllink/internal/cache"
	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/database"
	"github.com/skilllink/skilllink/internal/logger"
	"github.com/skilllink/skilllink/internal/messaging"
	"github.com/skilllink/skilllink/internal/observability"
	repositorygig "github.com/skilllink/skilllink/internal/repository/gig"
	repositoryorder "github.com/skilllink/skilllink/internal/repository/order"
	repositoryuser "github.com/skilllink/skilllink/internal/repository/user"
	httpserver "github.com/skilllink/skilllink/internal/server/http"
	serviceauth "github.com/skilllink/skilllink/internal/service/auth"
	servicegig "github.com/skilllink/skilllink/internal/service/gig"
	serviceorder "github.com/skilllink/skilllink/internal/service/order"
	"github.com/skilllink/skilllink/internal/storage"
	transporthttp "github.com/skilllink/skilllink/internal/transport/http"
	"github.com/skilllink/skilllink/internal/validation"
	"github.com/skilllink/skilllink/internal/worker"
	workerorder "github.com/skilllink/skilllink/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	storage.Module,
	validation.Module,
	token.Module,
	password.Module,
	repositoryuser.Module,
	repositorygig.Module,
	repositoryorder.Module,
	serviceauth.Module,
	servicegig.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
