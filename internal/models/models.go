package models

import (
	"time"
)

const (
	OrderStatusPending  = "Pending"
	OrderStatusAccepted = "Accepted"
	OrderStatusDeclined = "Declined"
	OrderStatusPaid     = "Paid"
)

const (
	FulfillmentPickup  = "Pickup"
	FulfillmentTakeout = "Takeout"
	OrderTypeDineIn    = "Dine-in"
)

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null;index"            json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                  json:"price"`
	Stock       int       `gorm:"not null;default:0"        json:"stock"`
	Category    string    `gorm:"index"                     json:"category"`
	ImageURL    string    `json:"image_url"`
	UserID      uint      `gorm:"index"                     json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string `gorm:"unique;not null"          json:"username"`
	PasswordHash  string `gorm:"not null"                 json:"-"`
	Role          string `gorm:"not null"                 json:"role"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `gorm:"index"                    json:"email"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                  json:"id"`
	UserID    uint `gorm:"index;not null"              json:"user_id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

// CustomerOrder is one line item of a customer order. Rows belonging to one
// logical order share a ReferenceID and are grouped at read time.
type CustomerOrder struct {
	ID              uint      `gorm:"primaryKey"      json:"id"`
	ReferenceID     string    `gorm:"index;not null"  json:"reference_id"`
	UserID          uint      `gorm:"index"           json:"user_id"`
	ProductName     string    `gorm:"not null"        json:"product_name"`
	Description     string    `json:"description"`
	Price           float64   `gorm:"not null"        json:"price"`
	Quantity        uint      `gorm:"not null"        json:"quantity"`
	FullName        string    `gorm:"not null"        json:"full_name"`
	ContactNumber   string    `json:"contact_number"`
	Address         string    `json:"address"`
	PaymentMode     string    `json:"payment_mode"`
	PaymentProofURL string    `json:"payment_proof_url"`
	FulfillmentType string    `gorm:"index"           json:"fulfillment_type"`
	Status          string    `gorm:"not null;default:Pending" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type OrderLine struct {
	Product  string  `json:"product"`
	Quantity uint    `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type PaymentHistory struct {
	ID              uint        `gorm:"primaryKey"        json:"id"`
	ReferenceID     string      `gorm:"uniqueIndex"       json:"reference_id"`
	Customer        string      `json:"customer"`
	Address         string      `json:"address"`
	ContactNumber   string      `json:"contact_number"`
	PaymentMode     string      `json:"payment_mode"`
	Status          string      `json:"status"`
	OrderDetails    []OrderLine `gorm:"serializer:json"   json:"order_details"`
	TotalPrice      float64     `json:"total_price"`
	PaymentProofURL string      `json:"payment_proof_url"`
	CreatedAt       time.Time   `json:"created_at"`
}

type OnsiteItem struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    uint    `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
}

type OnsiteOrder struct {
	ID            uint         `gorm:"primaryKey"      json:"id"`
	Items         []OnsiteItem `gorm:"serializer:json" json:"items"`
	OrderType     string       `gorm:"index"           json:"order_type"`
	PaymentMethod string       `json:"payment_method"`
	TotalAmount   float64      `json:"total_amount"`
	Status        string       `gorm:"not null;default:Pending" json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

type OnsiteHistory struct {
	ID            uint         `gorm:"primaryKey"      json:"id"`
	OrderID       uint         `gorm:"index"           json:"order_id"`
	Items         []OnsiteItem `gorm:"serializer:json" json:"items"`
	OrderType     string       `json:"order_type"`
	PaymentMethod string       `json:"payment_method"`
	TotalAmount   float64      `json:"total_amount"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

type RevenueDetail struct {
	Date        time.Time `json:"date"`
	OrderAmount float64   `json:"order_amount"`
}

// RevenueBucket is one aggregate row per calendar period. Totals only ever
// grow; declines and refunds are not reflected here.
type RevenueBucket struct {
	ID           uint            `gorm:"primaryKey"                        json:"id"`
	Period       string          `gorm:"uniqueIndex:idx_period_key;size:8" json:"period"`
	Key          string          `gorm:"uniqueIndex:idx_period_key"        json:"key"`
	TotalRevenue float64         `gorm:"not null;default:0"                json:"total_revenue"`
	Details      []RevenueDetail `gorm:"serializer:json"                   json:"details"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	Message   string    `gorm:"not null"                  json:"message"`
	Status    string    `gorm:"not null;default:unread"   json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
