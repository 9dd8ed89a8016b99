package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/models"
	"github.com/mgbucal/kapehan/internal/mykafka"
	"github.com/mgbucal/kapehan/internal/service/revenue"
	"github.com/mgbucal/kapehan/internal/util"
)

type OnsiteHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OnsiteHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// CreateOnsiteOrder records a walk-in order. Unlike customer orders, stock is
// reserved here at creation time and revenue is counted immediately; the
// later confirmation only moves the record to history.
func (h *OnsiteHandler) CreateOnsiteOrder(c echo.Context) error {
	var req struct {
		Items []struct {
			ProductID uint `json:"product_id"`
			Quantity  uint `json:"quantity"`
		} `json:"items"`
		OrderType     string `json:"order_type"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}
	if req.OrderType == "" || req.PaymentMethod == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order type and payment method are required")
	}

	var order models.OnsiteOrder
	now := time.Now()

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		items := make([]models.OnsiteItem, 0, len(req.Items))
		var total float64

		for _, it := range req.Items {
			if it.Quantity == 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
			}

			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "product not found")
				}
				return err
			}
			if product.Stock < int(it.Quantity) {
				return &ErrInsufficientStock{Product: product.Name, Available: product.Stock, Requested: it.Quantity}
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &ErrInsufficientStock{Product: product.Name, Available: product.Stock, Requested: it.Quantity}
			}

			items = append(items, models.OnsiteItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Quantity:    it.Quantity,
				TotalAmount: product.Price * float64(it.Quantity),
			})
			total += product.Price * float64(it.Quantity)
		}

		order = models.OnsiteOrder{
			Items:         items,
			OrderType:     req.OrderType,
			PaymentMethod: req.PaymentMethod,
			TotalAmount:   total,
			Status:        models.OrderStatusPending,
			CreatedAt:     now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return revenue.Record(tx, total, now)
	})

	if txErr != nil {
		var insufficient *ErrInsufficientStock
		if errors.As(txErr, &insufficient) {
			return echo.NewHTTPError(http.StatusConflict, insufficient.Error())
		}
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "onsite_order_created",
		"orderID": order.ID,
		"total":   order.TotalAmount,
	})

	return c.JSON(http.StatusCreated, order)
}

func (h *OnsiteHandler) ListOnsiteOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.OnsiteOrder{})
	if ot := c.QueryParam("order_type"); ot != "" {
		query = query.Where("order_type = ?", ot)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var orders []models.OnsiteOrder
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{"page": page, "size": limit, "total": total},
	})
}

// ConfirmOnsiteOrder moves the order to history as Paid with a fresh
// timestamp and deletes the pending row, atomically. Stock was already
// decremented at creation, so confirmation touches no product.
func (h *OnsiteHandler) ConfirmOnsiteOrder(c echo.Context) error {
	id := parseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var record models.OnsiteHistory
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var order models.OnsiteOrder
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "order not found")
			}
			return err
		}

		record = models.OnsiteHistory{
			OrderID:       order.ID,
			Items:         order.Items,
			OrderType:     order.OrderType,
			PaymentMethod: order.PaymentMethod,
			TotalAmount:   order.TotalAmount,
			Status:        models.OrderStatusPaid,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return tx.Delete(&models.OnsiteOrder{}, order.ID).Error
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "onsite_order_confirmed",
		"orderID": record.OrderID,
		"total":   record.TotalAmount,
	})

	return c.JSON(http.StatusOK, record)
}

func (h *OnsiteHandler) ListOnsiteHistory(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.OnsiteHistory{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var records []models.OnsiteHistory
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": records,
		"meta": map[string]any{"page": page, "size": limit, "total": total},
	})
}

func (h *OnsiteHandler) GetRevenue(c echo.Context) error {
	period := c.Param("period")
	valid := false
	for _, p := range revenue.Periods {
		if p == period {
			valid = true
			break
		}
	}
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "period must be one of day, week, month, year")
	}

	var buckets []models.RevenueBucket
	if err := h.DB.Where("period = ?", period).Order("key ASC").Find(&buckets).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, buckets)
}
