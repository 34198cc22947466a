package auth

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/auth/password"
	"github.com/skilllink/skilllink/internal/auth/token"
	"github.com/skilllink/skilllink/internal/entity"
	userrepo "github.com/skilllink/skilllink/internal/repository/user"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/skilllink/skilllink/service/auth")

// UserStore is the credential-store contract consumed by the service.
type UserStore interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Service handles registration and credential verification, issuing bearer
// tokens on success.
type Service struct {
	users  UserStore
	hasher *password.Hasher
	tokens *token.Manager
	logger *zap.Logger
}

// RegisterInput carries the validated fields for account creation.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	Description string
	Skills      []string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users  UserStore
	Hasher *password.Hasher
	Tokens *token.Manager
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		users:  p.Users,
		hasher: p.Hasher,
		tokens: p.Tokens,
		logger: p.Logger,
	}
}

// Register creates an account and issues a token. A taken email yields a
// conflict error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", errorbank.Conflict("a user with this email address already exists")
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, "", errorbank.Internal("failed to check email", errorbank.WithCause(err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, "", errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	role := entity.Role(in.Role)
	if !role.Valid() {
		role = entity.RoleBuyer
	}

	now := time.Now().UTC()
	user := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Description:  in.Description,
		Skills:       in.Skills,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, "", errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}

	signed, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, "", errorbank.Internal("failed to issue token", errorbank.WithCause(err))
	}

	s.logger.Info("user registered", zap.Int64("id", user.ID), zap.String("role", string(user.Role)))
	return user, signed, nil
}

// Login verifies email and password and issues a token. Unknown email and bad
// password produce the same unauthorized error.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*entity.User, string, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, "", errorbank.Unauthorized("email or password is incorrect")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, "", errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}

	if err := s.hasher.Compare(user.PasswordHash, plaintext); err != nil {
		return nil, "", errorbank.Unauthorized("email or password is incorrect")
	}

	signed, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, "", errorbank.Internal("failed to issue token", errorbank.WithCause(err))
	}

	return user, signed, nil
}
