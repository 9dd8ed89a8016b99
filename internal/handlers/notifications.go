package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/models"
	"github.com/mgbucal/kapehan/internal/util"
)

type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var unread int64
	if err := h.DB.Model(&models.Notification{}).Where("status = ?", models.NotificationUnread).Count(&unread).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var notes []models.Notification
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notes).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":         notes,
		"unread_count": unread,
		"meta":         map[string]any{"page": page, "size": limit},
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result := h.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("status", models.NotificationRead)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": models.NotificationRead})
}
