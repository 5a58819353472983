package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/leave-service/internal/api/dto"
	"github.com/spec-kit/leave-service/internal/auth"
	"github.com/spec-kit/leave-service/internal/domain"
	"github.com/spec-kit/leave-service/internal/service"
	apperrors "github.com/spec-kit/leave-service/pkg/util"
)

// ReviewHandler exposes the HR review queue and decision endpoint.
type ReviewHandler struct {
	leaves *service.LeaveService
}

// NewReviewHandler constructs handler.
func NewReviewHandler(leaveService *service.LeaveService) *ReviewHandler {
	return &ReviewHandler{leaves: leaveService}
}

// ListPending handles GET /hr/leaves/pending, oldest application first.
func (h *ReviewHandler) ListPending(c *fiber.Ctx) error {
	leaves, err := h.leaves.ListPendingForReview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeaveResponses(leaves)})
}

// ListRecent handles GET /hr/leaves/recent?limit=.
func (h *ReviewHandler) ListRecent(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		limit = parsed
	}
	leaves, err := h.leaves.ListRecent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeaveResponses(leaves)})
}

// Review handles POST /hr/leaves/:id/review.
func (h *ReviewHandler) Review(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReviewLeaveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	leave, err := h.leaves.Review(c.UserContext(), principal.User, c.Params("id"), domain.ReviewAction(req.Action), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeaveResponse(leave)})
}
