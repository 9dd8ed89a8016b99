package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mgbucal/kapehan/internal/models"
)

func TestListNotificationsCountsUnread(t *testing.T) {
	db := InitTestDB(t)
	h := &NotificationHandler{DB: db}
	e := echo.New()

	require.NoError(t, db.Create(&models.Notification{Message: "New customer order from Juan", Status: models.NotificationUnread}).Error)
	require.NoError(t, db.Create(&models.Notification{Message: "Espresso is running low on stock (2 left)", Status: models.NotificationUnread}).Error)
	require.NoError(t, db.Create(&models.Notification{Message: "seen already", Status: models.NotificationRead}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/admin/notifications", nil)
	require.NoError(t, h.ListNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data        []models.Notification `json:"data"`
		UnreadCount int64                 `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	require.Equal(t, int64(2), resp.UnreadCount)
}

func TestMarkNotificationRead(t *testing.T) {
	db := InitTestDB(t)
	h := &NotificationHandler{DB: db}
	e := echo.New()

	note := models.Notification{Message: "New customer order from Juan", Status: models.NotificationUnread}
	require.NoError(t, db.Create(&note).Error)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/admin/notifications/1/read", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.MarkRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Notification
	require.NoError(t, db.First(&stored, note.ID).Error)
	require.Equal(t, models.NotificationRead, stored.Status)
}
