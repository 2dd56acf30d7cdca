package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-history/internal/metrics"
	"github.com/i474232898/weather-history/internal/views"
	"github.com/i474232898/weather-history/internal/weather"
)

var validate = validator.New()

// Service is the part of the orchestrator the HTTP surface drives.
type Service interface {
	AddCity(ctx context.Context, city string) (weather.AddResult, error)
	Clear(ctx context.Context, confirmed bool) (weather.ClearResult, error)
	RefreshViews(ctx context.Context) (weather.Views, error)
	Average(ctx context.Context) (weather.Average, error)
	Series(ctx context.Context) (weather.Series, error)
	Count(ctx context.Context) (int64, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. gatherer may be nil, in which
// case /metrics is not served.
func RegisterRoutes(app *fiber.App, service Service, board *views.Board, gatherer prometheus.Gatherer) {
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(gatherer)))
	}

	v1 := app.Group("/api/v1")

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.AddCity(c.UserContext(), req.City)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"actionId": res.ActionID,
			"city":     res.City,
			"inserted": res.Inserted,
			"status":   board.Status(),
			"views":    render(res.Views),
		})
	})

	v1.Delete("/samples", func(c *fiber.Ctx) error {
		var q clearQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "confirm must be a boolean")
		}

		res, err := service.Clear(c.UserContext(), q.Confirm)
		if err != nil {
			return errorResponse(c, err)
		}
		if !res.Cleared {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   true,
				"message": "Are you sure you want to clear the database? Repeat with confirm=true.",
				"status":  board.Status(),
			})
		}
		return c.JSON(fiber.Map{
			"actionId": res.ActionID,
			"deleted":  res.Deleted,
			"status":   board.Status(),
			"views":    render(res.Views),
		})
	})

	v1.Get("/views", func(c *fiber.Ctx) error {
		if c.QueryBool("refresh") {
			if _, err := service.RefreshViews(c.UserContext()); err != nil {
				return errorResponse(c, err)
			}
		}
		count, err := service.Count(c.UserContext())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{
			"board":   board.Snapshot(),
			"samples": count,
		})
	})

	v1.Get("/average", func(c *fiber.Ctx) error {
		avg, err := service.Average(c.UserContext())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{
			"average": avg,
			"label":   avg.Label(),
			"status":  board.Status(),
		})
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		series, err := service.Series(c.UserContext())
		if err != nil {
			return errorResponse(c, err)
		}
		body := fiber.Map{
			"series": series,
			"cities": series.Cities(),
			"status": board.Status(),
		}
		if len(series) == 0 {
			body["message"] = weather.ChartPlaceholder
		}
		return c.JSON(body)
	})
}

type addCityRequest struct {
	// blank names are rejected by the service so the status line reflects them
	City string `json:"city" form:"city" validate:"max=200"`
}

type clearQuery struct {
	Confirm bool `query:"confirm"`
}

func render(v weather.Views) fiber.Map {
	m := fiber.Map{
		"average":      v.Average,
		"averageLabel": v.Average.Label(),
		"series":       v.Series,
		"refreshedAt":  v.RefreshedAt,
	}
	if msg := v.ChartMessage(); msg != "" {
		m["chartMessage"] = msg
	}
	return m
}

// StatusFor maps an error kind onto an HTTP status code.
func StatusFor(err error) int {
	switch weather.KindOf(err) {
	case weather.KindInvalidInput:
		return fiber.StatusBadRequest
	case weather.KindCityNotFound:
		return fiber.StatusNotFound
	case weather.KindHTTP, weather.KindConnection, weather.KindRequest:
		return fiber.StatusBadGateway
	case weather.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"error":   true,
		"kind":    weather.KindOf(err).String(),
		"message": weather.UserMessage(err),
	})
}
