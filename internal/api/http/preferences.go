package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/preferences"
)

type themeBody struct {
	Theme preferences.Theme `json:"theme"`
}

func registerPreferenceRoutes(v1 fiber.Router, prefs *preferences.Store) {
	v1.Get("/preferences", func(c *fiber.Ctx) error {
		p, err := prefs.Get(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(p)
	})

	v1.Put("/preferences", func(c *fiber.Ctx) error {
		var p preferences.Preferences
		if err := c.BodyParser(&p); err != nil {
			return writeError(c, badRequest("body must be a JSON preferences object"))
		}
		if err := prefs.Save(c.UserContext(), p); err != nil {
			return preferenceError(c, err)
		}
		return c.JSON(p)
	})

	v1.Delete("/preferences", func(c *fiber.Ctx) error {
		if err := prefs.Reset(c.UserContext()); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/theme", func(c *fiber.Ctx) error {
		theme, err := prefs.Theme(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(themeBody{Theme: theme})
	})

	v1.Put("/theme", func(c *fiber.Ctx) error {
		var body themeBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, badRequest(`body must be {"theme":"light"|"dark"}`))
		}
		if err := prefs.SetTheme(c.UserContext(), body.Theme); err != nil {
			return preferenceError(c, err)
		}
		return c.JSON(body)
	})

	v1.Post("/theme/toggle", func(c *fiber.Ctx) error {
		theme, err := prefs.ToggleTheme(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(themeBody{Theme: theme})
	})
}

func preferenceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, preferences.ErrInvalid) {
		return writeError(c, badRequest(err.Error()))
	}
	return writeError(c, err)
}
