package event

import (
	"errors"
	"time"

	"backend-kinfolk/internal/auth"
	"backend-kinfolk/internal/visibility"

	"github.com/gofiber/fiber/v2"
)

const feedLimit = 50

// RegisterRoutes mounts the event endpoints. Read paths take the optional
// middleware so anonymous viewers reach the engine with an empty viewer id;
// write paths require identity.
func RegisterRoutes(r fiber.Router, svc *Service, engine *visibility.Engine, authMiddleware, optionalAuth fiber.Handler) {
	r.Get("/feed", optionalAuth, func(c *fiber.Ctx) error {
		viewerID := auth.ViewerID(c)
		candidates, err := svc.CandidatesForFeed(c.Context(), c.QueryInt("limit", feedLimit))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		items := make([]visibility.Item, len(candidates))
		byID := make(map[string]Event, len(candidates))
		for i, ev := range candidates {
			items[i] = ev.VisibilityItem()
			byID[ev.ID] = ev
		}

		visible, err := engine.FilterVisible(c.Context(), items, viewerID, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		feed := make([]Event, 0, len(visible))
		for _, item := range visible {
			feed = append(feed, byID[item.ID])
		}
		return c.JSON(fiber.Map{"events": feed})
	})

	r.Get("/:id", optionalAuth, func(c *fiber.Ctx) error {
		viewerID := auth.ViewerID(c)
		ev, found, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		// Drafts look like missing events to everyone but the owner.
		if !found || (!ev.IsPublished && viewerID != ev.OwnerID) {
			return fiber.NewError(fiber.StatusNotFound, "event not found")
		}

		now := time.Now()
		item := ev.VisibilityItem()
		ok, err := engine.CanView(c.Context(), item, viewerID, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !ok {
			denial, err := engine.DescribeDenial(c.Context(), item, now)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			return c.Status(fiber.StatusForbidden).JSON(denial)
		}
		return c.JSON(ev)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Title         string          `json:"title"`
			Description   string          `json:"description"`
			PrivacyTier   visibility.Tier `json:"privacy_tier"`
			CustomGroupID string          `json:"custom_group_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title required")
		}
		ev, err := svc.Create(c.Context(), auth.ViewerID(c), req.Title, req.Description, req.PrivacyTier, req.CustomGroupID)
		if err != nil {
			if errors.Is(err, ErrUnknownTier) || errors.Is(err, ErrGroupRequired) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(ev)
	})

	r.Put("/:id/tier", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			PrivacyTier   visibility.Tier `json:"privacy_tier"`
			CustomGroupID string          `json:"custom_group_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		err := svc.UpdateTier(c.Context(), auth.ViewerID(c), c.Params("id"), req.PrivacyTier, req.CustomGroupID)
		if err != nil {
			if errors.Is(err, ErrUnknownTier) || errors.Is(err, ErrGroupRequired) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if errors.Is(err, ErrNotOwner) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/publish", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Publish(c.Context(), auth.ViewerID(c), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotOwner) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.SoftDelete(c.Context(), auth.ViewerID(c), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotOwner) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
