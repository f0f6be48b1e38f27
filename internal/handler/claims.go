package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/repository"
)

func (h *Handler) GetMyClaims(w http.ResponseWriter, r *http.Request) {
	principal := h.principal(r)
	page, limit := paginationParams(r)

	claimedShifts, total, err := h.repository.GetUserClaimedShifts(principal.UserID, page, limit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取认领列表成功", PaginatedData{
		Data:       claimedShifts,
		Pagination: domain.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetShiftClaims(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtxKey).(*domain.Shift)

	claims, err := h.repository.GetShiftClaims(shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次认领记录成功", claims)
}

func (h *Handler) ClaimShift(w http.ResponseWriter, r *http.Request) {
	principal := h.principal(r)
	shift := r.Context().Value(ShiftCtxKey).(*domain.Shift)

	claim, err := h.repository.ClaimShift(principal.UserID, shift.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyClaimed):
			h.badRequest(w, r, errors.New("您已认领过该班次"))
		case errors.Is(err, repository.ErrShiftFull):
			h.badRequest(w, r, errors.New("该班次的认领名额已满"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 给认领人发一封确认邮件，失败不影响认领结果
	if user, err := h.repository.GetUserByID(principal.UserID); err == nil {
		_ = h.publishMail(domain.MailMessage{
			Type: "claim_confirmation",
			To:   user.Email,
			Data: domain.ClaimConfirmationMailData{
				FullName:  user.FullName,
				ShiftName: shift.Name,
				StartTime: shift.Start.Format(time.DateTime),
				EndTime:   shift.End.Format(time.DateTime),
			},
		})
	}

	h.successResponse(w, r, "认领班次成功", claim)
}

func (h *Handler) RemoveClaim(w http.ResponseWriter, r *http.Request) {
	principal := h.principal(r)
	shift := r.Context().Value(ShiftCtxKey).(*domain.Shift)

	targetUserID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("用户ID无效"))
		return
	}

	// 只能取消自己的认领，管理员可以取消任何人的认领
	if principal.Role != domain.RoleAdmin && principal.UserID != targetUserID {
		h.unauthorized(w, r, "权限不足")
		return
	}

	if err := h.repository.RemoveClaim(targetUserID, shift.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "取消认领成功", nil)
}
