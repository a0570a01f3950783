package follow

import (
	"errors"

	"backend-kinfolk/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			FolloweeID string `json:"followee_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.FolloweeID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "followee_id required")
		}
		if err := svc.Request(c.Context(), auth.ViewerID(c), req.FolloweeID); err != nil {
			if errors.Is(err, ErrSelfFollow) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Post("/:followerID/accept", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Accept(c.Context(), auth.ViewerID(c), c.Params("followerID")); err != nil {
			if errors.Is(err, ErrNoPendingRequest) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:followerID/reject", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Reject(c.Context(), auth.ViewerID(c), c.Params("followerID")); err != nil {
			if errors.Is(err, ErrNoPendingRequest) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/:followerID/close-family", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			IsCloseFamily bool `json:"is_close_family"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := svc.SetCloseFamily(c.Context(), auth.ViewerID(c), c.Params("followerID"), req.IsCloseFamily); err != nil {
			if errors.Is(err, ErrNotAccepted) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:followeeID", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Unfollow(c.Context(), auth.ViewerID(c), c.Params("followeeID")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/requests", authMiddleware, func(c *fiber.Ctx) error {
		edges, err := svc.PendingRequests(c.Context(), auth.ViewerID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(edges)
	})
}
