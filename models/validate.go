package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValidationError carries per-field messages, mirrored to the client as
// a 400 with an "errors" object.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var ValidUnits = []string{"kg", "tonne", "quintal", "liter", "pound", "piece"}
var ValidCategories = []string{"Grains", "Vegetables", "Fruits", "Pulses", "Dairy", "Other"}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Location string `json:"location"`

	FarmName       string `json:"farmName"`
	FarmBio        string `json:"farmBio"`
	FarmAddress    string `json:"farmAddress"`
	VerificationID string `json:"verificationId"`
}

func (in *RegisterInput) Validate() error {
	var ve ValidationError
	if in.Username == "" {
		ve.Add("username", "Username is required")
	}
	if len(in.Password) < 6 {
		ve.Add("password", "Password must be at least 6 characters")
	}
	if in.FullName == "" {
		ve.Add("fullName", "Full name is required")
	}
	if !strings.Contains(in.Email, "@") {
		ve.Add("email", "Please enter a valid email")
	}
	if !contains(ValidRoles, in.Role) {
		ve.Add("role", "Please select a valid role")
	}
	return ve.OrNil()
}

type ProductInput struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
}

func (in *ProductInput) Validate() error {
	var ve ValidationError
	if in.Name == "" {
		ve.Add("name", "Name is required")
	}
	if !contains(ValidCategories, in.Category) {
		ve.Add("category", "Please select a valid category")
	}
	if in.Quantity <= 0 {
		ve.Add("quantity", "Quantity must be positive")
	}
	if !contains(ValidUnits, in.Unit) {
		ve.Add("unit", "Please select a valid unit")
	}
	if in.Price <= 0 {
		ve.Add("price", "Price must be positive")
	}
	if in.Location == "" {
		ve.Add("location", "Location is required")
	}
	return ve.OrNil()
}

type BidInput struct {
	ProductID int     `json:"productId"`
	Amount    float64 `json:"amount"`
	Quantity  float64 `json:"quantity"`
	Message   string  `json:"message"`
}

func (in *BidInput) Validate() error {
	var ve ValidationError
	if in.ProductID <= 0 {
		ve.Add("productId", "Product is required")
	}
	if in.Amount <= 0 {
		ve.Add("amount", "Bid amount must be positive")
	}
	if in.Quantity <= 0 {
		ve.Add("quantity", "Quantity must be positive")
	}
	return ve.OrNil()
}

type TransportInput struct {
	ProductID        int       `json:"productId"`
	PickupLocation   string    `json:"pickupLocation"`
	DeliveryLocation string    `json:"deliveryLocation"`
	Quantity         float64   `json:"quantity"`
	Date             time.Time `json:"date"`
}

func (in *TransportInput) Validate() error {
	var ve ValidationError
	if in.ProductID <= 0 {
		ve.Add("productId", "Product is required")
	}
	if in.PickupLocation == "" {
		ve.Add("pickupLocation", "Pickup location is required")
	}
	if in.DeliveryLocation == "" {
		ve.Add("deliveryLocation", "Delivery location is required")
	}
	if in.Quantity <= 0 {
		ve.Add("quantity", "Quantity must be positive")
	}
	if in.Date.IsZero() || !in.Date.After(time.Now()) {
		ve.Add("date", "Date must be in the future")
	}
	return ve.OrNil()
}

type MessageInput struct {
	ReceiverID int    `json:"receiverId"`
	Content    string `json:"content"`
}

func (in *MessageInput) Validate() error {
	var ve ValidationError
	if in.ReceiverID <= 0 {
		ve.Add("receiverId", "Receiver is required")
	}
	if in.Content == "" {
		ve.Add("content", "Message cannot be empty")
	}
	return ve.OrNil()
}

type VerificationInput struct {
	VerificationID string `json:"verificationId"`
	FarmName       string `json:"farmName"`
	FarmAddress    string `json:"farmAddress"`
}

func (in *VerificationInput) Validate() error {
	var ve ValidationError
	if in.VerificationID == "" {
		ve.Add("verificationId", "Verification ID is required")
	}
	return ve.OrNil()
}
