package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/models"
)

type ProfileHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the profile in place. There is no audit trail.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		Email         string `json:"email"`
		ContactNumber string `json:"contact_number"`
		Address       string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.ContactNumber = req.ContactNumber
	user.Address = req.Address

	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}
