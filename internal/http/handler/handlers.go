package handler

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"devtrack/internal/service"
)

type linkRequest struct {
	Sheet string `json:"sheet"`
}

type completedRequest struct {
	Completed *bool `json:"completed"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// HealthCheck reports readiness. With history enabled it pings the database;
// without a database there is nothing local to check.
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	errorPayload
//	@Router		/health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a bare liveness check.
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Success	200
//	@Router		/healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// LinkSheet links a spreadsheet by ID or full URL, replacing any previous link.
//
//	@Summary	Link a spreadsheet
//	@Tags		sheet
//	@Accept		json
//	@Produce	json
//	@Param		body	body		linkRequest	true	"spreadsheet id or url"
//	@Success	201		{object}	model.SheetLink
//	@Failure	400		{object}	errorPayload
//	@Failure	403		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/sheet [post]
func LinkSheet(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req linkRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid json body")
		}
		if strings.TrimSpace(req.Sheet) == "" {
			return writeError(c, fiber.StatusBadRequest, "SHEET_REQUIRED", "sheet is required")
		}

		link, err := svc.Link(c.UserContext(), req.Sheet)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(link)
	}
}

// GetSheetStatus returns the current link with live spreadsheet titles.
//
//	@Summary	Current link
//	@Tags		sheet
//	@Produce	json
//	@Success	200	{object}	model.SheetLink
//	@Failure	409	{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/sheet [get]
func GetSheetStatus(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		link, err := svc.Status(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(link)
	}
}

// UnlinkSheet removes the link.
//
//	@Summary	Unlink the spreadsheet
//	@Tags		sheet
//	@Success	204
//	@Failure	409	{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/sheet [delete]
func UnlinkSheet(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Unlink(c.UserContext()); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListDevices reads the whole first tab and returns its rows as devices.
//
//	@Summary	List devices
//	@Tags		devices
//	@Produce	json
//	@Success	200	{object}	service.DeviceListResult
//	@Failure	409	{object}	errorPayload
//	@Failure	422	{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/devices [get]
func ListDevices(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ListDevices(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// SetCompleted patches the Completed cell of the named device.
//
//	@Summary	Mark a device completed or pending
//	@Tags		devices
//	@Accept		json
//	@Produce	json
//	@Param		device	path		string				true	"device name"
//	@Param		body	body		completedRequest	true	"completed flag"
//	@Success	200		{object}	service.UpdateResult
//	@Failure	404		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Failure	422		{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/devices/{device}/completed [patch]
func SetCompleted(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req completedRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid json body")
		}
		if req.Completed == nil {
			return writeError(c, fiber.StatusBadRequest, "COMPLETED_REQUIRED", "completed is required")
		}

		res, err := svc.SetCompleted(c.UserContext(), deviceParam(c), *req.Completed)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// SetComment patches the Comment cell of the named device. An empty comment
// clears the cell.
//
//	@Summary	Set a device comment
//	@Tags		devices
//	@Accept		json
//	@Produce	json
//	@Param		device	path		string			true	"device name"
//	@Param		body	body		commentRequest	true	"comment text"
//	@Success	200		{object}	service.UpdateResult
//	@Failure	404		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Failure	422		{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/devices/{device}/comment [patch]
func SetComment(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid json body")
		}

		res, err := svc.SetComment(c.UserContext(), deviceParam(c), req.Comment)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ExportSheet uploads an .xlsx snapshot of the linked tab and returns a
// presigned download URL.
//
//	@Summary	Export the sheet
//	@Tags		sheet
//	@Produce	json
//	@Success	201	{object}	service.ExportResult
//	@Failure	409	{object}	errorPayload
//	@Failure	503	{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/sheet/export [post]
func ExportSheet(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Export(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListHistory returns recent cell updates.
//
//	@Summary	Cell update history
//	@Tags		history
//	@Produce	json
//	@Param		limit	query		int	false	"page size"
//	@Param		offset	query		int	false	"page offset"
//	@Success	200		{object}	service.HistoryResult
//	@Failure	503		{object}	errorPayload
//	@Security	ApiKeyAuth
//	@Router		/api/history [get]
func ListHistory(svc service.TrackerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "20")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.History(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// deviceParam returns the :device path segment, decoded. Device names with
// spaces arrive percent-encoded.
func deviceParam(c *fiber.Ctx) string {
	raw := c.Params("device")
	if dec, err := url.PathUnescape(raw); err == nil {
		return dec
	}
	return raw
}
