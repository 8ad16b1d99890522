package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book represents a catalog book with live price and stock
type Book struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ISBN        string          `json:"isbn,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Customer represents a registered customer profile
type Customer struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	FirstTimeBuyer   bool      `json:"first_time_buyer"`
	RegistrationDate time.Time `json:"registration_date"`
}

// CreateBookRequest represents the admin request to add a book
type CreateBookRequest struct {
	Title       string          `json:"title" binding:"required"`
	Author      string          `json:"author" binding:"required"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"gte=0"`
	ISBN        string          `json:"isbn"`
	Description string          `json:"description"`
}

// UpdateBookRequest represents the admin request to update price or stock
type UpdateBookRequest struct {
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock *int             `json:"stock,omitempty"`
}

// CreateCustomerRequest represents the request to register a customer profile
type CreateCustomerRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}
