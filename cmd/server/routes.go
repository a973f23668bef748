package main

import (
	"errors"
	"warfish-archive/lib/warfish"
	"warfish-archive/services/archive"

	"github.com/gofiber/fiber/v2"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, archive.ErrInvalidSubmitter):
		return fiber.StatusBadRequest
	case errors.Is(err, warfish.ErrUnexpectedShape),
		errors.Is(err, warfish.ErrUnknownAction):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
}

type submitHistoryRequest struct {
	Submitter  string                  `json:"submitter"`
	RawHistory []warfish.RawHistoryRow `json:"raw_history"`
}

type triggerSnapshotRequest struct {
	MinUnits           int `json:"min_units"`
	TerritoriesPerUnit int `json:"territories_per_unit"`
}

func registerRoutes(app *fiber.App, service archive.Service) {
	api := app.Group("/api")

	api.Get("/games", func(c *fiber.Ctx) error {
		games, err := service.ListGames(c.Context())
		if err != nil {
			return fail(c, err)
		}
		if games == nil {
			games = []int64{}
		}
		return c.JSON(fiber.Map{"games": games})
	})

	api.Get("/games/:gid/submitters", func(c *fiber.Ctx) error {
		gid, err := c.ParamsInt("gid")
		if err != nil {
			return fail(c, err)
		}
		submitters, err := service.ListSubmitters(c.Context(), gid)
		if err != nil {
			return fail(c, err)
		}
		if submitters == nil {
			submitters = []string{}
		}
		return c.JSON(fiber.Map{"submitters": submitters})
	})

	api.Get("/games/:gid/snapshot", func(c *fiber.Ctx) error {
		gid, err := c.ParamsInt("gid")
		if err != nil {
			return fail(c, err)
		}
		data, err := service.GetSnapshot(c.Context(), gid)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(data)
	})

	api.Post("/games/:gid/snapshot", func(c *fiber.Ctx) error {
		gid, err := c.ParamsInt("gid")
		if err != nil {
			return fail(c, err)
		}
		req := triggerSnapshotRequest{MinUnits: 3, TerritoriesPerUnit: 3}
		if len(c.Body()) > 0 {
			err = c.BodyParser(&req)
			if err != nil {
				return fail(c, err)
			}
		}
		data, err := service.TriggerSnapshot(c.Context(), gid, req.MinUnits, req.TerritoriesPerUnit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(data)
	})

	api.Get("/games/:gid/history/:submitter", func(c *fiber.Ctx) error {
		gid, err := c.ParamsInt("gid")
		if err != nil {
			return fail(c, err)
		}
		rows, err := service.GetHistory(c.Context(), gid, c.Params("submitter"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"raw_history": rows})
	})

	api.Post("/games/:gid/history", func(c *fiber.Ctx) error {
		gid, err := c.ParamsInt("gid")
		if err != nil {
			return fail(c, err)
		}
		var req submitHistoryRequest
		err = c.BodyParser(&req)
		if err != nil {
			return fail(c, err)
		}
		err = service.SubmitHistory(c.Context(), gid, req.Submitter, req.RawHistory)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	api.Get("/games/:gid/complete", func(c *fiber.Ctx) error {
		gid, err := c.ParamsInt("gid")
		if err != nil {
			return fail(c, err)
		}
		ok, err := service.HasHistory(c.Context(), gid, c.Query("submitter"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"has_history": ok})
	})
}
