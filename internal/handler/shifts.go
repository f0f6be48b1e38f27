package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"
)

// 普通用户只能看到从现在起一周内开始的班次
const memberShiftWindow = 7 * 24 * time.Hour

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	principal := h.principal(r)
	page, limit := paginationParams(r)

	var (
		shifts []*domain.Shift
		total  int
		err    error
	)

	switch principal.Role {
	case domain.RoleMember:
		now := time.Now()
		shifts, total, err = h.repository.GetShiftsWithinWindow(now, now.Add(memberShiftWindow), page, limit)
	case domain.RoleAdmin:
		shifts, total, err = h.repository.GetShifts(page, limit)
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", PaginatedData{
		Data:       shifts,
		Pagination: domain.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtxKey).(*domain.Shift)
	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
		// 开始和结束时间是毫秒时间戳
		Start     int64 `json:"start" validate:"required"`
		End       int64 `json:"end" validate:"required,gtfield=Start"`
		MaxClaims int32 `json:"maxClaims" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.Shift{
		Name:      req.Name,
		Start:     time.UnixMilli(req.Start),
		End:       time.UnixMilli(req.End),
		MaxClaims: req.MaxClaims,
	}

	if err := h.repository.CreateShift(shift); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtxKey).(*domain.Shift)

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班次成功", nil)
}
