package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mgbucal/kapehan/internal/models"
	"github.com/mgbucal/kapehan/internal/mykafka"
	"github.com/mgbucal/kapehan/internal/service/revenue"
)

func TestCreateOnsiteOrder(t *testing.T) {
	db := InitTestDB(t)
	h := &OnsiteHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	product := models.Product{Name: "Caramel Macchiato", Price: 150, Stock: 10}
	require.NoError(t, db.Create(&product).Error)

	payload := map[string]any{
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 2}},
		"order_type":     models.OrderTypeDineIn,
		"payment_method": "Cash",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/admin/onsite", payload)
	require.NoError(t, h.CreateOnsiteOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.OnsiteOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, float64(300), order.TotalAmount)
	require.Len(t, order.Items, 1)

	// stock is reserved at creation on the walk-in path
	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	require.Equal(t, 8, updated.Stock)

	var bucket models.RevenueBucket
	key := revenue.DayKey(time.Now())
	require.NoError(t, db.Where("period = ? AND key = ?", revenue.PeriodDay, key).First(&bucket).Error)
	require.Equal(t, float64(300), bucket.TotalRevenue)
}

func TestCreateOnsiteOrderInsufficientStock(t *testing.T) {
	db := InitTestDB(t)
	h := &OnsiteHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	product := models.Product{Name: "Matcha Latte", Price: 160, Stock: 1}
	require.NoError(t, db.Create(&product).Error)

	payload := map[string]any{
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 3}},
		"order_type":     models.OrderTypeDineIn,
		"payment_method": "Cash",
	}
	_, c := doJSONRequest(t, e, http.MethodPost, "/admin/onsite", payload)

	err := h.CreateOnsiteOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
	require.Contains(t, he.Message, "Matcha Latte")

	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	require.Equal(t, 1, updated.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.OnsiteOrder{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)

	var bucketCount int64
	require.NoError(t, db.Model(&models.RevenueBucket{}).Count(&bucketCount).Error)
	require.Zero(t, bucketCount)
}

func TestDailyRevenueAccumulatesAcrossOrders(t *testing.T) {
	db := InitTestDB(t)
	h := &OnsiteHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	cheap := models.Product{Name: "Brewed Coffee", Price: 100, Stock: 10}
	pricey := models.Product{Name: "Spanish Latte", Price: 150, Stock: 10}
	require.NoError(t, db.Create(&cheap).Error)
	require.NoError(t, db.Create(&pricey).Error)

	for _, p := range []models.Product{cheap, pricey} {
		payload := map[string]any{
			"items":          []map[string]any{{"product_id": p.ID, "quantity": 1}},
			"order_type":     models.FulfillmentTakeout,
			"payment_method": "GCash",
		}
		rec, c := doJSONRequest(t, e, http.MethodPost, "/admin/onsite", payload)
		require.NoError(t, h.CreateOnsiteOrder(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var bucket models.RevenueBucket
	key := revenue.DayKey(time.Now())
	require.NoError(t, db.Where("period = ? AND key = ?", revenue.PeriodDay, key).First(&bucket).Error)
	require.Equal(t, float64(250), bucket.TotalRevenue)
	require.Len(t, bucket.Details, 2)

	var sum float64
	for _, d := range bucket.Details {
		sum += d.OrderAmount
	}
	require.Equal(t, bucket.TotalRevenue, sum)

	// all four period buckets exist for the same order stream
	var bucketCount int64
	require.NoError(t, db.Model(&models.RevenueBucket{}).Count(&bucketCount).Error)
	require.Equal(t, int64(4), bucketCount)
}

func TestConfirmOnsiteOrder(t *testing.T) {
	db := InitTestDB(t)
	h := &OnsiteHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	order := models.OnsiteOrder{
		Items: []models.OnsiteItem{
			{ProductID: 1, ProductName: "Espresso", Price: 80, Quantity: 2, TotalAmount: 160},
		},
		OrderType:     models.OrderTypeDineIn,
		PaymentMethod: "Cash",
		TotalAmount:   160,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&order).Error)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/admin/onsite/1/confirm", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.ConfirmOnsiteOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var record models.OnsiteHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&record).Error)
	require.Equal(t, models.OrderStatusPaid, record.Status)
	require.Equal(t, order.TotalAmount, record.TotalAmount)
	require.Len(t, record.Items, 1)
	require.True(t, record.CreatedAt.After(order.CreatedAt))

	var remaining int64
	require.NoError(t, db.Model(&models.OnsiteOrder{}).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestGetRevenueRejectsUnknownPeriod(t *testing.T) {
	db := InitTestDB(t)
	h := &OnsiteHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodGet, "/admin/revenue/hourly", nil)
	c.SetParamNames("period")
	c.SetParamValues("hourly")

	err := h.GetRevenue(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}
