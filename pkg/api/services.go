package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// IdempotencyKeyHeader carries a client-chosen key on RecordExpense.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	ExpenseServiceName = "splitledger.v1.ExpenseService"
	UserServiceName    = "splitledger.v1.UserService"
	GroupServiceName   = "splitledger.v1.GroupService"
)

const (
	ExpenseServiceRecordExpenseProcedure = "/" + ExpenseServiceName + "/RecordExpense"
	ExpenseServiceGetBalanceProcedure    = "/" + ExpenseServiceName + "/GetBalance"
	ExpenseServiceListMySplitsProcedure  = "/" + ExpenseServiceName + "/ListMySplits"
	ExpenseServiceSettleSplitProcedure   = "/" + ExpenseServiceName + "/SettleSplit"

	UserServiceSignUpProcedure         = "/" + UserServiceName + "/SignUp"
	UserServiceLoginProcedure          = "/" + UserServiceName + "/Login"
	UserServiceGetUserDetailsProcedure = "/" + UserServiceName + "/GetUserDetails"
	UserServiceListUsersProcedure      = "/" + UserServiceName + "/ListUsers"

	GroupServiceCreateGroupProcedure = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceDeleteGroupProcedure = "/" + GroupServiceName + "/DeleteGroup"
	GroupServiceListGroupsProcedure  = "/" + GroupServiceName + "/ListGroups"
)

// IsPublicProcedure reports whether procedure may be called without a token.
func IsPublicProcedure(procedure string) bool {
	return procedure == UserServiceSignUpProcedure || procedure == UserServiceLoginProcedure
}

// ExpenseServiceHandler is implemented by the expense RPC service.
type ExpenseServiceHandler interface {
	RecordExpense(context.Context, *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error)
	GetBalance(context.Context, *connect.Request[GetBalanceRequest]) (*connect.Response[GetBalanceResponse], error)
	ListMySplits(context.Context, *connect.Request[ListMySplitsRequest]) (*connect.Response[ListMySplitsResponse], error)
	SettleSplit(context.Context, *connect.Request[SettleSplitRequest]) (*connect.Response[SettleSplitResponse], error)
}

// UserServiceHandler is implemented by the user RPC service.
type UserServiceHandler interface {
	SignUp(context.Context, *connect.Request[SignUpRequest]) (*connect.Response[SignUpResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetUserDetails(context.Context, *connect.Request[GetUserDetailsRequest]) (*connect.Response[GetUserDetailsResponse], error)
	ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error)
}

// GroupServiceHandler is implemented by the group RPC service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// route dispatches on the full procedure path, like generated Connect code.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func servicePath(name string) string {
	return "/" + name + "/"
}

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(ExpenseServiceName), route(map[string]http.Handler{
		ExpenseServiceRecordExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceRecordExpenseProcedure, svc.RecordExpense, opts...),
		ExpenseServiceGetBalanceProcedure:    connect.NewUnaryHandler(ExpenseServiceGetBalanceProcedure, svc.GetBalance, opts...),
		ExpenseServiceListMySplitsProcedure:  connect.NewUnaryHandler(ExpenseServiceListMySplitsProcedure, svc.ListMySplits, opts...),
		ExpenseServiceSettleSplitProcedure:   connect.NewUnaryHandler(ExpenseServiceSettleSplitProcedure, svc.SettleSplit, opts...),
	})
}

// NewUserServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(UserServiceName), route(map[string]http.Handler{
		UserServiceSignUpProcedure:         connect.NewUnaryHandler(UserServiceSignUpProcedure, svc.SignUp, opts...),
		UserServiceLoginProcedure:          connect.NewUnaryHandler(UserServiceLoginProcedure, svc.Login, opts...),
		UserServiceGetUserDetailsProcedure: connect.NewUnaryHandler(UserServiceGetUserDetailsProcedure, svc.GetUserDetails, opts...),
		UserServiceListUsersProcedure:      connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...),
	})
}

// NewGroupServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(GroupServiceName), route(map[string]http.Handler{
		GroupServiceCreateGroupProcedure: connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceDeleteGroupProcedure: connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...),
		GroupServiceListGroupsProcedure:  connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
	})
}
