package cart

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/handlers"
	"github.com/mgbucal/kapehan/internal/models"
	"github.com/mgbucal/kapehan/internal/mykafka"
)

type CartHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := handlers.UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := handlers.UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		Quantity  uint `json:"quantity"`
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var item models.CartItem
	tx := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item)
	if tx.Error == nil {
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, map[string]any{
			"type":      "cart_item_added",
			"userID":    userID,
			"productID": req.ProductID,
			"quantity":  item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, tx.Error.Error())
	}

	newItem := models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.DB.Create(&newItem).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  newItem.Quantity,
	})
	return c.JSON(http.StatusOK, newItem)
}

func (h *CartHandler) DeleteOneFromCart(c echo.Context) error {
	userID, err := handlers.UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if item.Quantity > 1 {
		item.Quantity -= 1
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, map[string]any{
			"type":         "cart_item_decremented",
			"userID":       userID,
			"id":           item.ID,
			"new_quantity": item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, map[string]any{"deleted_item": id})
}

func (h *CartHandler) DeleteAllFromCart(c echo.Context) error {
	userID, err := handlers.UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var remaining []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&remaining).Error; err != nil {
		c.Logger().Errorf("DB read after delete error: %v", err)
	}

	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
		"remaining":    remaining,
	})

	return c.JSON(http.StatusOK, remaining)
}

// Checkout copies the cart into customer_orders, one row per line item, all
// sharing a fresh reference id, then empties the cart in the same
// transaction. Stock is not touched until an operator accepts the order.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := handlers.UserIDFromContext(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		FullName        string `json:"full_name"`
		ContactNumber   string `json:"contact_number"`
		Address         string `json:"address"`
		PaymentMode     string `json:"payment_mode"`
		PaymentProofURL string `json:"payment_proof_url"`
		FulfillmentType string `json:"fulfillment_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.FullName == "" || req.ContactNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "full name and contact number are required")
	}
	if req.FulfillmentType != models.FulfillmentPickup && req.FulfillmentType != models.FulfillmentTakeout {
		return echo.NewHTTPError(http.StatusBadRequest, "fulfillment type must be Pickup or Takeout")
	}

	reference := uuid.NewString()
	var orders []models.CustomerOrder

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		}

		now := time.Now()
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "product not found")
				}
				return err
			}

			row := models.CustomerOrder{
				ReferenceID:     reference,
				UserID:          userID,
				ProductName:     p.Name,
				Description:     p.Description,
				Price:           p.Price,
				Quantity:        it.Quantity,
				FullName:        req.FullName,
				ContactNumber:   req.ContactNumber,
				Address:         req.Address,
				PaymentMode:     req.PaymentMode,
				PaymentProofURL: req.PaymentProofURL,
				FulfillmentType: req.FulfillmentType,
				Status:          models.OrderStatusPending,
				CreatedAt:       now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			orders = append(orders, row)
		}

		note := models.Notification{
			Message: "New customer order from " + req.FullName,
			Status:  models.NotificationUnread,
		}
		if err := tx.Create(&note).Error; err != nil {
			return err
		}

		// Clearing the whole cart here is what keeps the mirror rows from
		// ever being orphaned.
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	var total float64
	for _, o := range orders {
		total += o.Price * float64(o.Quantity)
	}

	h.publish(c, map[string]any{
		"type":      "order_placed",
		"userID":    userID,
		"reference": reference,
		"total":     total,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"reference": reference,
		"total":     total,
		"status":    models.OrderStatusPending,
		"items":     orders,
	})
}
