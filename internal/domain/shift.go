package domain

import (
	"time"
)

type Shift struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	MaxClaims int32     `json:"maxClaims"`
	// ClaimsCount 是读取时实时统计出来的，不落库
	ClaimsCount int64     `json:"claimsCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ShiftClaim struct {
	UserID    int64     `json:"userId"`
	ShiftID   string    `json:"shiftId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShiftClaimWithUser 用于某个班次的认领列表，带上认领人的公开信息
type ShiftClaimWithUser struct {
	ShiftClaim
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ClaimedShift 用于"我的认领"列表，是班次信息加上认领记录本身
type ClaimedShift struct {
	Shift
	Claim ShiftClaim `json:"claim"`
}
