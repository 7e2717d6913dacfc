package moderation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/toolindex/toolindex-api/internal/middleware"
	"github.com/toolindex/toolindex-api/internal/pkg/errorhandler"
	"github.com/toolindex/toolindex-api/internal/pkg/response"
	"github.com/toolindex/toolindex-api/internal/pkg/validator"
)

// Handler handles moderation HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new moderation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateReport handles POST /reports
// @Summary File a content or user report
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report details"
// @Success 201 {object} response.Response{data=Report}
// @Failure 400,401,404,500 {object} response.Response
// @Router /reports [post]
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateReportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	report, created, err := h.service.FileReport(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if created {
		if _, err := h.service.Enqueue(r.Context(), report.ID); err != nil && !errors.Is(err, ErrAlreadyQueued) {
			h.writeError(w, r, err)
			return
		}
		response.Created(w, report)
		return
	}
	response.OK(w, report)
}

// ListReports handles GET /moderation/reports
// @Summary List reports
// @Tags Moderation
// @Produce json
// @Security BearerAuth
// @Param status query string false "Report status"
// @Param reason query string false "Report reason"
// @Success 200 {object} response.Response{data=[]Report}
// @Router /moderation/reports [get]
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	filter := &ReportFilter{
		Status: ReportStatus(r.URL.Query().Get("status")),
		Reason: ReportReason(r.URL.Query().Get("reason")),
	}
	filter.Limit, filter.Offset = pagination(r)
	if reporter := r.URL.Query().Get("reporter_id"); reporter != "" {
		id, err := strconv.ParseInt(reporter, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid reporter_id")
			return
		}
		filter.ReporterID = &id
	}

	reports, err := h.service.ListReports(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, reports)
}

// GetReport handles GET /moderation/reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, report)
}

// ListQueue handles GET /moderation/queue
// @Summary Review queue, urgent first
// @Tags Moderation
// @Produce json
// @Security BearerAuth
// @Param priority query string false "Priority band"
// @Param assignee query int false "Assigned moderator id"
// @Success 200 {object} response.Response{data=[]QueueEntry}
// @Router /moderation/queue [get]
func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	priority := r.URL.Query().Get("priority")
	if err := validator.ValidateVar(priority, "priority_band"); err != nil {
		response.BadRequest(w, "Priority must be: low, medium, high, or urgent")
		return
	}

	filter := &QueueFilter{Priority: Priority(priority)}
	filter.Limit, filter.Offset = pagination(r)
	if assignee := r.URL.Query().Get("assignee"); assignee != "" {
		id, err := strconv.ParseInt(assignee, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid assignee")
			return
		}
		filter.AssignedTo = &id
	}

	entries, err := h.service.ListQueue(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, entries)
}

// AssignEntry handles POST /moderation/queue/{id}/assign
func (h *Handler) AssignEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	moderatorID := middleware.GetUserID(r.Context())

	entry, err := h.service.Assign(r.Context(), id, moderatorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, entry)
}

// UnassignEntry handles POST /moderation/queue/{id}/unassign
func (h *Handler) UnassignEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	moderatorID := middleware.GetUserID(r.Context())

	if err := h.service.Unassign(r.Context(), id, moderatorID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// RecordDecision handles POST /moderation/reports/{id}/decision
// @Summary Record a verdict on an in-review report
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordDecisionRequest true "Verdict"
// @Success 201 {object} response.Response{data=Decision}
// @Failure 400,401,404,409,500 {object} response.Response
// @Router /moderation/reports/{id}/decision [post]
func (h *Handler) RecordDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	moderatorID := middleware.GetUserID(r.Context())

	var req RecordDecisionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	decision, err := h.service.RecordDecision(r.Context(), moderatorID, id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, decision)
}

// ApplyAction handles POST /moderation/actions
// @Summary Apply a sanction to content or a user
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ApplyActionRequest true "Sanction"
// @Success 201 {object} response.Response{data=Action}
// @Failure 400,401,404,409,500,503 {object} response.Response
// @Router /moderation/actions [post]
func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	moderatorID := middleware.GetUserID(r.Context())

	var req ApplyActionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	action, err := h.service.ApplyAction(r.Context(), moderatorID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, action)
}

// GetAction handles GET /moderation/actions/{id}
func (h *Handler) GetAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	action, err := h.service.GetAction(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, action)
}

// ListUserActions handles GET /moderation/users/{id}/actions
func (h *Handler) ListUserActions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit, offset := pagination(r)

	actions, err := h.service.ListUserActions(r.Context(), id, limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, actions)
}

// FileAppeal handles POST /moderation/actions/{id}/appeal
// @Summary Appeal a sanction
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FileAppealRequest true "Appeal grounds"
// @Success 201 {object} response.Response{data=Appeal}
// @Failure 400,401,403,404,409,500 {object} response.Response
// @Router /moderation/actions/{id}/appeal [post]
func (h *Handler) FileAppeal(w http.ResponseWriter, r *http.Request) {
	actionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID := middleware.GetUserID(r.Context())

	var req FileAppealRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	appeal, err := h.service.FileAppeal(r.Context(), userID, actionID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, appeal)
}

// ListAppeals handles GET /moderation/appeals
func (h *Handler) ListAppeals(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	appeals, err := h.service.ListPendingAppeals(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, appeals)
}

// ReviewAppeal handles POST /moderation/appeals/{id}/review
// @Summary Review a pending appeal
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReviewAppealRequest true "Review outcome"
// @Success 200 {object} response.Response{data=Appeal}
// @Failure 400,401,404,409,500 {object} response.Response
// @Router /moderation/appeals/{id}/review [post]
func (h *Handler) ReviewAppeal(w http.ResponseWriter, r *http.Request) {
	appealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	reviewerID := middleware.GetUserID(r.Context())

	var req ReviewAppealRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	appeal, err := h.service.ReviewAppeal(r.Context(), reviewerID, appealID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, appeal)
}

// GetUserStatus handles GET /moderation/users/{id}/status
func (h *Handler) GetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	// Regular users may only look at their own standing
	if middleware.GetRole(r.Context()) == middleware.RoleUser && middleware.GetUserID(r.Context()) != id {
		response.Forbidden(w, "Access denied")
		return
	}

	status, err := h.service.GetStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, status)
}

// GetStatistics handles GET /moderation/stats
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, stats)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSelfReport),
		errors.Is(err, ErrUnknownTargetType),
		errors.Is(err, ErrReasoningRequired),
		errors.Is(err, ErrActionableRequired),
		errors.Is(err, ErrTargetUserRequired),
		errors.Is(err, ErrInvalidDuration):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrTargetNotFound),
		errors.Is(err, ErrReportedUserNotFound),
		errors.Is(err, ErrReportNotFound),
		errors.Is(err, ErrQueueEntryNotFound),
		errors.Is(err, ErrActionNotFound),
		errors.Is(err, ErrAppealNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotActionTarget):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrReportNotPending),
		errors.Is(err, ErrAlreadyQueued),
		errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrReportNotUnderReview),
		errors.Is(err, ErrDecisionExists),
		errors.Is(err, ErrDuplicateAction),
		errors.Is(err, ErrNotAppealable),
		errors.Is(err, ErrAppealPendingExists),
		errors.Is(err, ErrAppealClosed),
		errors.Is(err, ErrNotReversible):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrContentStoreFailed):
		response.DependencyError(w)
	default:
		errorhandler.HandleError(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
