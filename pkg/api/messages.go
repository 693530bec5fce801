package api

import "time"

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance amounts are two-decimal strings. Net = Due - Owed.
type Balance struct {
	Owed string `json:"owed"`
	Due  string `json:"due"`
	Net  string `json:"net"`
}

type Split struct {
	ID        string `json:"id"`
	ExpenseID string `json:"expense_id"`
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	IsSettled bool   `json:"is_settled"`
}

type Expense struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	PaidBy        string    `json:"paid_by"`
	TotalAmount   string    `json:"total_amount"`
	SharedBetween []string  `json:"shared_between"`
	CreatedAt     time.Time `json:"created_at"`
	Splits        []Split   `json:"splits,omitempty"`
}

// UserSplit is a split together with the expense it belongs to.
type UserSplit struct {
	Split
	Description string    `json:"description"`
	PaidBy      string    `json:"paid_by"`
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AdminUserID string    `json:"admin_user_id"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordExpenseRequest records an expense. PaidBy defaults to the caller.
type RecordExpenseRequest struct {
	Description   string   `json:"description"`
	PaidBy        string   `json:"paid_by,omitempty"`
	TotalAmount   string   `json:"total_amount"`
	SharedBetween []string `json:"shared_between"`
}

type RecordExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// GetBalanceRequest asks for a user's balance. UserID defaults to the caller.
type GetBalanceRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type GetBalanceResponse struct {
	UserID  string  `json:"user_id"`
	Balance Balance `json:"balance"`
}

type ListMySplitsRequest struct{}

type ListMySplitsResponse struct {
	Splits []UserSplit `json:"splits"`
}

type SettleSplitRequest struct {
	SplitID string `json:"split_id"`
}

type SettleSplitResponse struct {
	Split *UserSplit `json:"split"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type SignUpResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// GetUserDetailsRequest fetches a user with their balance. UserID defaults to the caller.
type GetUserDetailsRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type GetUserDetailsResponse struct {
	User    *User   `json:"user"`
	Balance Balance `json:"balance"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

// CreateGroupRequest creates a group. The caller becomes its admin and a member.
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}
