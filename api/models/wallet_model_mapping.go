package models

import (
	"github.com/WeSplit-io/WeSplit-Backend/services/ledger"
)

func ToWalletResponse(w *ledger.SharedWallet) *WalletResponse {
	members := make([]MemberResponse, len(w.Members))
	for i, m := range w.Members {
		members[i] = MemberResponse{
			UserID:           m.UserID,
			TotalContributed: m.TotalContributed.String(),
			TotalWithdrawn:   m.TotalWithdrawn.String(),
			Balance:          m.Balance().String(),
		}
	}

	return &WalletResponse{
		ID:           w.ID,
		Name:         w.Name,
		CreatorID:    w.CreatorID,
		Currency:     w.Currency,
		TotalBalance: w.TotalBalance.String(),
		Status:       string(w.Status),
		Members:      members,
	}
}
