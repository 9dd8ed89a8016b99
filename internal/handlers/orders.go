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
	"github.com/mgbucal/kapehan/internal/util"
)

const lowStockThreshold = 5

// ErrInsufficientStock names the product that could not be fulfilled.
type ErrInsufficientStock struct {
	Product   string
	Available int
	Requested uint
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("not enough stock for %s: only %d available, %d requested", e.Product, e.Available, e.Requested)
}

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["reference"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

type orderGroup struct {
	ReferenceID     string                 `json:"reference_id"`
	FullName        string                 `json:"full_name"`
	ContactNumber   string                 `json:"contact_number"`
	Address         string                 `json:"address"`
	PaymentMode     string                 `json:"payment_mode"`
	PaymentProofURL string                 `json:"payment_proof_url"`
	FulfillmentType string                 `json:"fulfillment_type"`
	Status          string                 `json:"status"`
	TotalPrice      float64                `json:"total_price"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []models.CustomerOrder `json:"items"`
}

// ListOrders returns incoming orders grouped by reference id. Grouping is an
// equality match at read time, there is no foreign key between the rows.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.CustomerOrder{})
	if ft := c.QueryParam("fulfillment_type"); ft != "" {
		query = query.Where("fulfillment_type = ?", ft)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.CustomerOrder
	if err := query.Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var groups []orderGroup
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.ReferenceID]
		if !ok {
			index[row.ReferenceID] = len(groups)
			groups = append(groups, orderGroup{
				ReferenceID:     row.ReferenceID,
				FullName:        row.FullName,
				ContactNumber:   row.ContactNumber,
				Address:         row.Address,
				PaymentMode:     row.PaymentMode,
				PaymentProofURL: row.PaymentProofURL,
				FulfillmentType: row.FulfillmentType,
				Status:          row.Status,
				CreatedAt:       row.CreatedAt,
			})
			i = len(groups) - 1
		}
		groups[i].Items = append(groups[i].Items, row)
		groups[i].TotalPrice += row.Price * float64(row.Quantity)
	}

	total := len(groups)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": groups[offset:end],
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

// AcceptOrder runs the whole acceptance in one transaction: stock checks and
// decrements, one payment-history record summarizing every line, and removal
// of the incoming rows. An insufficient line rolls the whole thing back, so a
// retry after failure never double-applies a decrement.
func (h *OrderHandler) AcceptOrder(c echo.Context) error {
	reference := c.Param("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference is required")
	}

	var history models.PaymentHistory
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var rows []models.CustomerOrder
		if err := tx.Where("reference_id = ?", reference).Order("id ASC").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return echo.NewHTTPError(http.StatusNotFound, "no orders found for reference")
		}

		lines := make([]models.OrderLine, 0, len(rows))
		var totalPrice float64
		for _, row := range rows {
			var product models.Product
			if err := tx.Where("name = ?", row.ProductName).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("product %s no longer exists", row.ProductName))
				}
				return err
			}
			if product.Stock < int(row.Quantity) {
				return &ErrInsufficientStock{Product: product.Name, Available: product.Stock, Requested: row.Quantity}
			}

			// Guarded decrement: RowsAffected is zero when a concurrent
			// accept drained the stock after the read above.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, row.Quantity).
				Update("stock", gorm.Expr("stock - ?", row.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &ErrInsufficientStock{Product: product.Name, Available: product.Stock, Requested: row.Quantity}
			}

			if product.Stock-int(row.Quantity) < lowStockThreshold {
				note := models.Notification{
					Message: fmt.Sprintf("%s is running low on stock (%d left)", product.Name, product.Stock-int(row.Quantity)),
					Status:  models.NotificationUnread,
				}
				if err := tx.Create(&note).Error; err != nil {
					return err
				}
			}

			lines = append(lines, models.OrderLine{
				Product:  row.ProductName,
				Quantity: row.Quantity,
				Price:    row.Price,
				Total:    row.Price * float64(row.Quantity),
			})
			totalPrice += row.Price * float64(row.Quantity)
		}

		first := rows[0]
		history = models.PaymentHistory{
			ReferenceID:     reference,
			Customer:        first.FullName,
			Address:         first.Address,
			ContactNumber:   first.ContactNumber,
			PaymentMode:     first.PaymentMode,
			Status:          models.OrderStatusAccepted,
			OrderDetails:    lines,
			TotalPrice:      totalPrice,
			PaymentProofURL: first.PaymentProofURL,
			CreatedAt:       time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		return tx.Where("reference_id = ?", reference).Delete(&models.CustomerOrder{}).Error
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
		"type":      "order_accepted",
		"reference": reference,
		"total":     history.TotalPrice,
	})

	return c.JSON(http.StatusOK, history)
}

// DeclineOrder flips the reference's rows to Declined. No stock or revenue
// side effects; re-declining is a no-op.
func (h *OrderHandler) DeclineOrder(c echo.Context) error {
	reference := c.Param("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference is required")
	}

	result := h.DB.Model(&models.CustomerOrder{}).
		Where("reference_id = ?", reference).
		Update("status", models.OrderStatusDeclined)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no orders found for reference")
	}

	h.publish(c, map[string]any{
		"type":      "order_declined",
		"reference": reference,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"reference": reference,
		"status":    models.OrderStatusDeclined,
	})
}

func (h *OrderHandler) ListPaymentHistory(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.PaymentHistory{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var records []models.PaymentHistory
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": records,
		"meta": map[string]any{"page": page, "size": limit, "total": total},
	})
}
