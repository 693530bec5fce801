package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.UserServiceHandler = (*UserService)(nil)

// UserService implements the Connect UserService.
type UserService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	balances      BalanceReader
	logger        *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, balances BalanceReader, logger *slog.Logger) *UserService {
	return &UserService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		balances:      balances,
		logger:        logger,
	}
}

// SignUp creates a new user account and returns a session token.
func (s *UserService) SignUp(ctx context.Context, req *connect.Request[api.SignUpRequest]) (*connect.Response[api.SignUpResponse], error) {
	s.logger.InfoContext(ctx, "SignUp request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("email and password are required"))
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.Name, req.Msg.PhoneNumber, req.Msg.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "Registration failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.SignUpResponse{User: toAPIUser(user), Token: token}), nil
}

// Login authenticates a user and returns a session token.
func (s *UserService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "Login failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

// GetUserDetails returns a user together with their current balance.
func (s *UserService) GetUserDetails(ctx context.Context, req *connect.Request[api.GetUserDetailsRequest]) (*connect.Response[api.GetUserDetailsResponse], error) {
	userID := req.Msg.UserID
	if userID == "" {
		userID = middleware.GetUserID(ctx)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	balance, err := s.balances.GetBalance(ctx, user.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetUserDetailsResponse{
		User:    toAPIUser(user),
		Balance: toAPIBalance(balance),
	}), nil
}

// ListUsers returns every registered user without credentials.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "ListUsers failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.User, 0, len(users))
	for _, u := range users {
		out = append(out, *toAPIUser(u))
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}

