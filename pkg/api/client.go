package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// ExpenseServiceClient calls ExpenseService.
type ExpenseServiceClient struct {
	recordExpense *connect.Client[RecordExpenseRequest, RecordExpenseResponse]
	getBalance    *connect.Client[GetBalanceRequest, GetBalanceResponse]
	listMySplits  *connect.Client[ListMySplitsRequest, ListMySplitsResponse]
	settleSplit   *connect.Client[SettleSplitRequest, SettleSplitResponse]
}

// NewExpenseServiceClient creates a client for the service at baseURL,
// e.g. "http://localhost:8080".
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		recordExpense: connect.NewClient[RecordExpenseRequest, RecordExpenseResponse](httpClient, baseURL+ExpenseServiceRecordExpenseProcedure, opts...),
		getBalance:    connect.NewClient[GetBalanceRequest, GetBalanceResponse](httpClient, baseURL+ExpenseServiceGetBalanceProcedure, opts...),
		listMySplits:  connect.NewClient[ListMySplitsRequest, ListMySplitsResponse](httpClient, baseURL+ExpenseServiceListMySplitsProcedure, opts...),
		settleSplit:   connect.NewClient[SettleSplitRequest, SettleSplitResponse](httpClient, baseURL+ExpenseServiceSettleSplitProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetBalance(ctx context.Context, req *connect.Request[GetBalanceRequest]) (*connect.Response[GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListMySplits(ctx context.Context, req *connect.Request[ListMySplitsRequest]) (*connect.Response[ListMySplitsResponse], error) {
	return c.listMySplits.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) SettleSplit(ctx context.Context, req *connect.Request[SettleSplitRequest]) (*connect.Response[SettleSplitResponse], error) {
	return c.settleSplit.CallUnary(ctx, req)
}

// UserServiceClient calls UserService.
type UserServiceClient struct {
	signUp         *connect.Client[SignUpRequest, SignUpResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getUserDetails *connect.Client[GetUserDetailsRequest, GetUserDetailsResponse]
	listUsers      *connect.Client[ListUsersRequest, ListUsersResponse]
}

func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &UserServiceClient{
		signUp:         connect.NewClient[SignUpRequest, SignUpResponse](httpClient, baseURL+UserServiceSignUpProcedure, opts...),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+UserServiceLoginProcedure, opts...),
		getUserDetails: connect.NewClient[GetUserDetailsRequest, GetUserDetailsResponse](httpClient, baseURL+UserServiceGetUserDetailsProcedure, opts...),
		listUsers:      connect.NewClient[ListUsersRequest, ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
	}
}

func (c *UserServiceClient) SignUp(ctx context.Context, req *connect.Request[SignUpRequest]) (*connect.Response[SignUpResponse], error) {
	return c.signUp.CallUnary(ctx, req)
}

func (c *UserServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *UserServiceClient) GetUserDetails(ctx context.Context, req *connect.Request[GetUserDetailsRequest]) (*connect.Response[GetUserDetailsResponse], error) {
	return c.getUserDetails.CallUnary(ctx, req)
}

func (c *UserServiceClient) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

// GroupServiceClient calls GroupService.
type GroupServiceClient struct {
	createGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	deleteGroup *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
	listGroups  *connect.Client[ListGroupsRequest, ListGroupsResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup: connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		deleteGroup: connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		listGroups:  connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}
