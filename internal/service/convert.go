package service

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIBalance(b models.Balance) api.Balance {
	return api.Balance{
		Owed: b.Owed.String(),
		Due:  b.Due.String(),
		Net:  b.Net.String(),
	}
}

func toAPISplit(s models.Split) api.Split {
	return api.Split{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		UserID:    s.UserID,
		Amount:    s.Amount.String(),
		IsSettled: s.IsSettled,
	}
}

func toAPIUserSplit(s models.UserSplit) api.UserSplit {
	return api.UserSplit{
		Split:       toAPISplit(s.Split),
		Description: s.Description,
		PaidBy:      s.PaidBy,
		TotalAmount: s.TotalAmount.String(),
		CreatedAt:   s.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:            e.ID,
		Description:   e.Description,
		PaidBy:        e.PaidBy,
		TotalAmount:   e.TotalAmount.String(),
		SharedBetween: e.SharedBetween,
		CreatedAt:     e.CreatedAt,
	}
	for _, s := range e.Splits {
		out.Splits = append(out.Splits, toAPISplit(s))
	}
	return out
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		AdminUserID: g.AdminUserID,
		Members:     g.Members,
		CreatedAt:   g.CreatedAt,
	}
}
