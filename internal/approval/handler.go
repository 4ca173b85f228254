package approval

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
	Decide(headerID int64, actor auth.Actor, dto DecisionDTO) (*DecisionResult, error)
	AdminOverride(headerID int64, actor auth.Actor, dto DecisionDTO) (*DecisionResult, error)
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

func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.Service.Decide)
}

func (h *Handler) Override(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.Service.AdminOverride)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, apply func(int64, auth.Actor, DecisionDTO) (*DecisionResult, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet ID")
		return
	}

	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Decide: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := apply(id, user.Actor(), dto)
	if err != nil {
		h.Logger.Error("Decide: service error", "error", err, "timesheet_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
