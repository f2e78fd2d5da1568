package store

import (
	"context"
	"errors"
	"time"

	"agromandi/models"
)

var (
	// ErrNotFound signals a missing entity, distinct from invalid input.
	ErrNotFound = errors.New("entity not found")
	// ErrAlreadyClaimed is returned when a transport request already has
	// an assigned transporter.
	ErrAlreadyClaimed = errors.New("transport request already claimed")
	// ErrDuplicateUsername is returned on username collision at registration.
	ErrDuplicateUsername = errors.New("username already taken")
)

// DB is the active store, chosen in main. Tests swap in a fresh MemStore.
var DB Store

// ProductFilter narrows and orders product listings.
type ProductFilter struct {
	Category string
	Status   models.ProductStatus
	Search   string
	Sort     string // price_asc, price_desc, newest
	Limit    int
	Offset   int
}

// UserPatch is a partial user update; nil fields are left untouched.
type UserPatch struct {
	FullName           *string
	Phone              *string
	Location           *string
	ProfilePicture     *string
	FarmName           *string
	FarmBio            *string
	FarmAddress        *string
	VerificationID     *string
	Certifications     *[]string
	VerificationStatus *models.VerificationStatus
	RefreshToken       *string
	RefreshExpiry      *time.Time
}

// ProductPatch is a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Category    *string
	Description *string
	Quantity    *float64
	Unit        *string
	Price       *float64
	Location    *string
	Tags        *[]string
	Status      *models.ProductStatus
}

// Store owns every entity record. Implementations must make each method
// atomic; the composite mutations (AcceptBid, ClaimTransportRequest)
// must not allow two concurrent winners.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, id int, p UserPatch) (models.User, error)
	GetPendingFarmerVerifications(ctx context.Context) ([]models.User, error)

	// Products
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	GetProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	GetProductsByFarmerID(ctx context.Context, farmerID int) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int) (models.Product, error)
	UpdateProduct(ctx context.Context, id int, p ProductPatch) (models.Product, error)
	ExpireProductsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Bids
	CreateBid(ctx context.Context, b models.Bid) (models.Bid, error)
	GetBidsByProductID(ctx context.Context, productID int) ([]models.Bid, error)
	GetBidsByBuyerID(ctx context.Context, buyerID int) ([]models.Bid, error)
	GetBidByID(ctx context.Context, id int) (models.Bid, error)
	UpdateBidStatus(ctx context.Context, id int, status models.BidStatus) (models.Bid, error)
	// AcceptBid moves the bid to accepted and its product to sold in one
	// critical section. Fails with models.ErrInvalidTransition if the bid
	// is not pending or the product is no longer active.
	AcceptBid(ctx context.Context, id int) (models.Bid, models.Product, error)

	// Transport requests
	CreateTransportRequest(ctx context.Context, t models.TransportRequest) (models.TransportRequest, error)
	GetTransportRequestsByRequesterID(ctx context.Context, requesterID int) ([]models.TransportRequest, error)
	GetTransportRequestsByTransporterID(ctx context.Context, transporterID int) ([]models.TransportRequest, error)
	GetAvailableTransportRequests(ctx context.Context) ([]models.TransportRequest, error)
	GetTransportRequestByID(ctx context.Context, id int) (models.TransportRequest, error)
	// ClaimTransportRequest assigns the transporter and moves the request
	// to accepted, only while transporterId is unset.
	ClaimTransportRequest(ctx context.Context, id, transporterID int) (models.TransportRequest, error)
	UpdateTransportRequestStatus(ctx context.Context, id int, status models.TransportStatus) (models.TransportRequest, error)

	// Messages
	CreateMessage(ctx context.Context, m models.Message) (models.Message, error)
	GetMessagesBetweenUsers(ctx context.Context, user1ID, user2ID int) ([]models.Message, error)
	GetUnreadMessagesByUserID(ctx context.Context, userID int) ([]models.Message, error)
	GetMessageByID(ctx context.Context, id int) (models.Message, error)
	MarkMessageRead(ctx context.Context, id int) (models.Message, error)
}
