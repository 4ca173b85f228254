package timesheet

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	SaveDraft(actor auth.Actor, dto SaveTimesheetDTO) (*Header, error)
	Submit(actor auth.Actor, dto SaveTimesheetDTO) (*Header, error)
	GetDetail(headerID int64, actor auth.Actor) (*Detail, error)
	ListForActor(actor auth.Actor, statusFilter string) ([]*ListItem, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Save handles both "save as draft" and "submit"; the action field in the
// body picks the path.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SaveTimesheetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Save: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var header *Header
	var err error
	if dto.IsSubmit() {
		header, err = h.Service.Submit(user.Actor(), dto)
	} else {
		header, err = h.Service.SaveDraft(user.Actor(), dto)
	}
	if err != nil {
		h.Logger.Error("Save: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timesheet_id": header.ID,
		"status":       header.Status,
		"total_hours":  header.TotalHours,
	})
}

// Update mutates an existing header in place; the id comes from the URL.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := headerIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet ID")
		return
	}

	var dto SaveTimesheetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.HeaderID = &id

	var header *Header
	if dto.IsSubmit() {
		header, err = h.Service.Submit(user.Actor(), dto)
	} else {
		header, err = h.Service.SaveDraft(user.Actor(), dto)
	}
	if err != nil {
		h.Logger.Error("Update: service error", "error", err, "timesheet_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timesheet_id": header.ID,
		"status":       header.Status,
		"total_hours":  header.TotalHours,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := headerIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet ID")
		return
	}

	detail, err := h.Service.GetDetail(id, user.Actor())
	if err != nil {
		h.Logger.Error("Get: service error", "error", err, "timesheet_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status := r.URL.Query().Get("status")
	if status == "All" {
		status = ""
	}

	items, err := h.Service.ListForActor(user.Actor(), status)
	if err != nil {
		h.Logger.Error("List: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timesheets": items,
	})
}

func headerIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
