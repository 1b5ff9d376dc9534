package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/service"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/httpx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// UsersHandler covers admin/HR account management endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

func actorRole(r *http.Request) (domain.Role, bool) {
	raw, ok := httpx.RoleFromContext(r.Context())
	if !ok {
		return "", false
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		return "", false
	}
	return role, true
}

// HandleCreate handles POST /v1/auth/users
//
//	@Summary		Create user
//	@Description	Creates an account with a random initial password, which is
//	@Description	emailed to the new user rather than returned. HR cannot create
//	@Description	admin accounts.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createUserRequest	true	"Name, email, role"
//	@Success		201		{object}	userResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing fields or bad role"
//	@Failure		403		{object}	httpx.ErrorBody	"Role assignment not permitted"
//	@Failure		409		{object}	httpx.ErrorBody	"Email already taken"
//	@Router			/v1/auth/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorRole(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := h.UserService.CreateUser(ctx, actor, req.Name, req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserExists):
			httpx.WriteError(w, http.StatusConflict, err.Error())
		default:
			log.Error("user creation failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "user creation failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleList handles GET /v1/users
//
//	@Summary		List users
//	@Description	Filtered, paginated account list, newest first. The status
//	@Description	filter takes "active" or "inactive".
//	@Tags			Users
//	@Produce		json
//	@Param			page	query		int		false	"Page (1-based)"
//	@Param			limit	query		int		false	"Page size"
//	@Param			name	query		string	false	"Name substring"
//	@Param			email	query		string	false	"Email substring"
//	@Param			role	query		string	false	"Role (admin|hr|user)"
//	@Param			status	query		string	false	"active or inactive"
//	@Success		200		{object}	userListResponse
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	filter := store.UserFilter{
		Name:  q.Get("name"),
		Email: q.Get("email"),
		Page:  queryInt(q.Get("page"), 1),
		Limit: queryInt(q.Get("limit"), 10),
	}

	if raw := q.Get("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid role filter")
			return
		}
		filter.Role = role
	}

	switch q.Get("status") {
	case "":
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	users, total, err := h.UserService.ListUsers(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("user listing failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "user listing failed")
		return
	}

	resp := userListResponse{
		Users: make([]userResponse, 0, len(users)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PUT /v1/users/{id}
//
//	@Summary		Update user
//	@Description	Mutates name, email, role, and optionally the password of an
//	@Description	account. A deactivated target cannot be edited. A password set
//	@Description	here is emailed to the user.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User ID (ULID)"
//	@Param			request	body		updateUserRequest	true	"Fields to change"
//	@Success		200		{object}	userResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Target deactivated or bad input"
//	@Failure		403		{object}	httpx.ErrorBody	"Role assignment not permitted"
//	@Failure		404		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody	"Email already taken"
//	@Router			/v1/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorRole(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	params := service.UpdateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid role")
			return
		}
		params.Role = &role
	}

	user, err := h.UserService.UpdateUser(ctx, actor, r.PathValue("id"), params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUserExists):
			httpx.WriteError(w, http.StatusConflict, err.Error())
		default:
			slogx.FromContext(ctx).Error("user update failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "user update failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleToggleStatus handles PUT /v1/users/{id}/toggle-status
//
//	@Summary		Toggle user activation
//	@Description	Flips the active flag. Deactivation is reversible; accounts are
//	@Description	never deleted.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID (ULID)"
//	@Success		200	{object}	userResponse
//	@Failure		404	{object}	httpx.ErrorBody
//	@Router			/v1/users/{id}/toggle-status [put].
func (h *UsersHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.ToggleStatus(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		slogx.FromContext(ctx).Error("status toggle failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "status toggle failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
