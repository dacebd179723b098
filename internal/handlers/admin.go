// Package handlers implements HTTP request handlers for the AuthBox service.
// This file handles the admin surface: account management, groups and
// memberships, the permission catalog, and grant operations.
package handlers

import (
	"errors"

	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrative HTTP requests.
type AdminHandler struct {
	userService    *services.UserService
	permService    *services.PermissionService
	userRepo       *repository.UserRepository
	groupRepo      *repository.GroupRepository
	permRepo       *repository.PermissionRepository
	statsRepo      *repository.StatsRepository
	auditRepo      *repository.AuditRepository
	securityLogger *security.Logger
}

// NewAdminHandler creates a new instance of AdminHandler.
func NewAdminHandler(userService *services.UserService, permService *services.PermissionService, securityLogger *security.Logger) *AdminHandler {
	return &AdminHandler{
		userService:    userService,
		permService:    permService,
		userRepo:       repository.NewUserRepository(),
		groupRepo:      repository.NewGroupRepository(),
		permRepo:       repository.NewPermissionRepository(),
		statsRepo:      repository.NewStatsRepository(),
		auditRepo:      repository.NewAuditRepository(),
		securityLogger: securityLogger,
	}
}

// actor returns the authenticated admin's ID for audit entries.
func actor(c *fiber.Ctx) *int {
	if id, ok := c.Locals("user_id").(int); ok {
		return &id
	}
	return nil
}

func (h *AdminHandler) audit(c *fiber.Ctx, action, objectType string, objectID *int) {
	entry := &models.AuditLog{
		ActorID:    actor(c),
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), entry); err != nil {
		h.securityLogger.Error("audit log write failed", err)
	}
}

// ============================================================================
// Users
// ============================================================================

// ListUsers returns every account, newest first, without password hashes.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userRepo.ListAll(c.Context())
	if err != nil {
		return respondRepoError(c, err)
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return respond(c, fiber.StatusOK, views)
}

// CreateUser registers a new account.
//
// Responses:
//   - 201 with the account view
//   - 409 when the email is already registered
//   - 400 for a malformed body or date of birth
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var form models.CreateUserForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}
	if form.Email == "" || form.Password == "" {
		return respondError(c, fiber.StatusBadRequest, "email and password are required")
	}

	user, err := h.userService.CreateUser(c.Context(), form)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			return respondError(c, fiber.StatusBadRequest, err.Error())
		}
		return respondRepoError(c, err)
	}

	h.audit(c, "CREATE_USER", "user", &user.ID)
	h.securityLogger.SecurityEvent(security.EventUserCreate, actor(c), user.Email,
		c.IP(), c.Get("User-Agent"), nil)

	return respond(c, fiber.StatusCreated, user.View())
}

// GetUser returns one account by ID.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.userRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, user.View())
}

// DeleteUser removes an account. Related grants and memberships cascade.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.userRepo.Delete(c.Context(), id); err != nil {
		return respondRepoError(c, err)
	}

	h.audit(c, "DELETE_USER", "user", &id)
	return c.SendStatus(fiber.StatusNoContent)
}

// SetUserActive toggles the is_active flag of an account.
//
// Request Body: {"active": bool}
func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	if err := h.userRepo.SetActive(c.Context(), id, body.Active); err != nil {
		return respondRepoError(c, err)
	}

	h.audit(c, "SET_USER_ACTIVE", "user", &id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ============================================================================
// Groups
// ============================================================================

// ListGroups returns all groups with member counts.
func (h *AdminHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.groupRepo.ListAll(c.Context())
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, groups)
}

// CreateGroup creates a new group.
func (h *AdminHandler) CreateGroup(c *fiber.Ctx) error {
	var group models.Group
	if err := c.BodyParser(&group); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}
	if group.Name == "" {
		return respondError(c, fiber.StatusBadRequest, "group name is required")
	}

	if err := h.groupRepo.Create(c.Context(), &group); err != nil {
		return respondRepoError(c, err)
	}

	h.audit(c, "CREATE_GROUP", "group", &group.ID)
	h.securityLogger.SecurityEvent(security.EventGroupCreate, actor(c), "",
		c.IP(), c.Get("User-Agent"), map[string]interface{}{"group": group.Name})

	return respond(c, fiber.StatusCreated, group)
}

// DeleteGroup removes a group; memberships and group grants cascade.
func (h *AdminHandler) DeleteGroup(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}

	if err := h.groupRepo.Delete(c.Context(), id); err != nil {
		return respondRepoError(c, err)
	}

	h.audit(c, "DELETE_GROUP", "group", &id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGroupMembers returns the accounts belonging to a group.
func (h *AdminHandler) ListGroupMembers(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.groupRepo.FindByID(c.Context(), id); err != nil {
		return respondRepoError(c, err)
	}

	members, err := h.groupRepo.GetMembers(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	views := make([]models.UserView, 0, len(members))
	for i := range members {
		views = append(views, members[i].View())
	}
	return respond(c, fiber.StatusOK, views)
}

// AddGroupMember adds an account to a group. Idempotent.
//
// Request Body: {"user_id": int}
func (h *AdminHandler) AddGroupMember(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}

	var body struct {
		UserID int `json:"user_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	if _, err := h.groupRepo.FindByID(c.Context(), groupID); err != nil {
		return respondRepoError(c, err)
	}
	if _, err := h.userRepo.FindByID(c.Context(), body.UserID); err != nil {
		return respondRepoError(c, err)
	}

	if err := h.groupRepo.AddMember(c.Context(), body.UserID, groupID); err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventGroupMemberAdd, actor(c), "",
		c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"group_id": groupID, "user_id": body.UserID})

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveGroupMember removes an account from a group.
func (h *AdminHandler) RemoveGroupMember(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}
	userID, err := c.ParamsInt("user_id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.groupRepo.RemoveMember(c.Context(), userID, groupID); err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventGroupMemberRemove, actor(c), "",
		c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"group_id": groupID, "user_id": userID})

	return c.SendStatus(fiber.StatusNoContent)
}

// ============================================================================
// Permissions and grants
// ============================================================================

// ListPermissions returns the permission catalog.
func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.permRepo.ListAll(c.Context())
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, perms)
}

// CreatePermission adds a permission to the catalog.
func (h *AdminHandler) CreatePermission(c *fiber.Ctx) error {
	var p models.Permission
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}
	if p.Codename == "" {
		return respondError(c, fiber.StatusBadRequest, "codename is required")
	}

	if err := h.permRepo.Create(c.Context(), &p); err != nil {
		return respondRepoError(c, err)
	}

	h.audit(c, "CREATE_PERMISSION", "permission", &p.ID)
	return respond(c, fiber.StatusCreated, p)
}

// ListUserPermissions returns the permissions an account holds directly.
// Group-held permissions never appear here.
func (h *AdminHandler) ListUserPermissions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.userRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	perms, err := h.permService.ListForUser(c.Context(), user)
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, perms)
}

// GrantUserPermission adds a permission, by codename, to an account's
// permission set. Granting an already-held permission reports granted=false
// and changes nothing.
//
// Request Body: {"codename": string}
func (h *AdminHandler) GrantUserPermission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var body struct {
		Codename string `json:"codename"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	user, err := h.userRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	granted, err := h.permService.GrantToUser(c.Context(), user, body.Codename)
	if err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventPermissionGranted, actor(c), user.Email,
		c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"codename": body.Codename, "granted": granted})
	h.audit(c, "GRANT_PERMISSION", "user", &user.ID)

	return respond(c, fiber.StatusOK, models.PermissionGrantView{
		Codename: body.Codename,
		UserID:   user.ID,
		Granted:  granted,
	})
}

// RevokeUserPermission removes a permission, by codename, from an account.
func (h *AdminHandler) RevokeUserPermission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid user id")
	}
	codename := c.Params("codename")

	user, err := h.userRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	if err := h.permService.RevokeFromUser(c.Context(), user, codename); err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventPermissionRevoked, actor(c), user.Email,
		c.IP(), c.Get("User-Agent"), map[string]interface{}{"codename": codename})

	return c.SendStatus(fiber.StatusNoContent)
}

// ListGroupPermissions returns the permissions a group holds.
func (h *AdminHandler) ListGroupPermissions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.groupRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	perms, err := h.permService.ListForGroup(c.Context(), group)
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, perms)
}

// GrantGroupPermission adds a permission, by codename, to a group's
// permission set. Does not grant anything to the group's members.
func (h *AdminHandler) GrantGroupPermission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}

	var body struct {
		Codename string `json:"codename"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	group, err := h.groupRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	granted, err := h.permService.GrantToGroup(c.Context(), group, body.Codename)
	if err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventPermissionGranted, actor(c), "",
		c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"codename": body.Codename, "group": group.Name, "granted": granted})
	h.audit(c, "GRANT_PERMISSION", "group", &group.ID)

	return respond(c, fiber.StatusOK, models.PermissionGrantView{
		Codename: body.Codename,
		GroupID:  group.ID,
		Granted:  granted,
	})
}

// RevokeGroupPermission removes a permission, by codename, from a group.
func (h *AdminHandler) RevokeGroupPermission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid group id")
	}
	codename := c.Params("codename")

	group, err := h.groupRepo.FindByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}

	if err := h.permService.RevokeFromGroup(c.Context(), group, codename); err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventPermissionRevoked, actor(c), "",
		c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"codename": codename, "group": group.Name})

	return c.SendStatus(fiber.StatusNoContent)
}

// Assign performs the one-shot assignment action: resolve a permission by
// codename and grant it to both a user and a group.
//
// Request Body: {"user_id": int, "group_id": int, "codename": string}
//
// Responses:
//   - 204 on success (idempotent; repeating is a no-op)
//   - 404 when the codename, user, or group does not exist; an unknown
//     codename produces no side effects
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	var form models.GrantForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	user, err := h.userRepo.FindByID(c.Context(), form.UserID)
	if err != nil {
		return respondRepoError(c, err)
	}
	group, err := h.groupRepo.FindByID(c.Context(), form.GroupID)
	if err != nil {
		return respondRepoError(c, err)
	}

	if err := h.permService.Assign(c.Context(), user, group, form.Codename); err != nil {
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventPermissionGranted, actor(c), user.Email,
		c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"codename": form.Codename, "group": group.Name})
	h.audit(c, "ASSIGN_PERMISSION", "permission", nil)

	return c.SendStatus(fiber.StatusNoContent)
}

// ============================================================================
// Dashboard
// ============================================================================

// Dashboard returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.statsRepo.GetDashboardStats(c.Context())
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, stats)
}

// AuditLog returns the most recent audit entries.
func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	entries, err := h.auditRepo.ListRecent(c.Context(), limit)
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, entries)
}
