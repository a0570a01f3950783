package billing

import (
	"errors"
	"time"

	"backend-kinfolk/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		userID := auth.ViewerID(c)
		snap, found, err := svc.SnapshotFor(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		entitled, err := svc.IsEntitled(c.Context(), userID, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		resp := fiber.Map{"entitled": entitled}
		if found {
			resp["subscription"] = snap
		}
		return c.JSON(resp)
	})

	// Ingestion point for the payment pipeline's resulting state. Sits
	// behind the internal network boundary, not user auth.
	r.Post("/apply", func(c *fiber.Ctx) error {
		var snap Snapshot
		if err := c.BodyParser(&snap); err != nil || snap.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		applied, err := svc.ApplySnapshot(c.Context(), snap)
		if err != nil {
			if errors.Is(err, ErrUnknownPlan) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(applied)
	})
}
