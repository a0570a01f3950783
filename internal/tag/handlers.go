package tag

import (
	"errors"

	"backend-kinfolk/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			ItemID          string `json:"item_id"`
			TaggedUserID    string `json:"tagged_user_id"`
			TaggedProfileID string `json:"tagged_profile_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ItemID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "item_id required")
		}
		if (req.TaggedUserID == "") == (req.TaggedProfileID == "") {
			return fiber.NewError(fiber.StatusBadRequest, "exactly one of tagged_user_id or tagged_profile_id required")
		}

		var (
			created Tag
			err     error
		)
		if req.TaggedUserID != "" {
			created, err = svc.TagUser(c.Context(), req.ItemID, req.TaggedUserID, auth.ViewerID(c))
		} else {
			created, err = svc.TagProfile(c.Context(), req.ItemID, req.TaggedProfileID, auth.ViewerID(c))
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/:id/accept", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Accept(c.Context(), c.Params("id"), auth.ViewerID(c)); err != nil {
			if errors.Is(err, ErrNotTagged) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/reject", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Reject(c.Context(), c.Params("id"), auth.ViewerID(c)); err != nil {
			if errors.Is(err, ErrNotTagged) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Remove(c.Context(), c.Params("id"), auth.ViewerID(c)); err != nil {
			if errors.Is(err, ErrNotOwner) {
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/items/:itemID", authMiddleware, func(c *fiber.Ctx) error {
		tags, err := svc.ListForItem(c.Context(), c.Params("itemID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(tags)
	})
}
