package models

import "time"

// Roles recognised by the marketplace.
const (
	RoleAdmin       = "admin"
	RoleFarmer      = "farmer"
	RoleBuyer       = "buyer"
	RoleMiddleman   = "middleman"
	RoleTransporter = "transporter"
)

var ValidRoles = []string{RoleAdmin, RoleFarmer, RoleBuyer, RoleMiddleman, RoleTransporter}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type User struct {
	ID             int    `json:"id" bson:"id"`
	Username       string `json:"username" bson:"username"`
	Password       string `json:"-" bson:"password"`
	FullName       string `json:"fullName" bson:"fullname"`
	Email          string `json:"email" bson:"email"`
	Phone          string `json:"phone,omitempty" bson:"phone,omitempty"`
	Role           string `json:"role" bson:"role"`
	Location       string `json:"location,omitempty" bson:"location,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty" bson:"profilepicture,omitempty"`

	// Farmer profile
	FarmName           string             `json:"farmName,omitempty" bson:"farmname,omitempty"`
	FarmBio            string             `json:"farmBio,omitempty" bson:"farmbio,omitempty"`
	FarmAddress        string             `json:"farmAddress,omitempty" bson:"farmaddress,omitempty"`
	VerificationID     string             `json:"verificationId,omitempty" bson:"verificationid,omitempty"`
	Certifications     []string           `json:"certifications" bson:"certifications"`
	VerificationStatus VerificationStatus `json:"verificationStatus" bson:"verificationstatus"`

	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdat"`
}

type Product struct {
	ID          int           `json:"id" bson:"id"`
	FarmerID    int           `json:"farmerId" bson:"farmerid"`
	Name        string        `json:"name" bson:"name"`
	Category    string        `json:"category" bson:"category"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Quantity    float64       `json:"quantity" bson:"quantity"`
	Unit        string        `json:"unit" bson:"unit"`
	Price       float64       `json:"price" bson:"price"`
	Location    string        `json:"location" bson:"location"`
	Images      []string      `json:"images" bson:"images"`
	Tags        []string      `json:"tags" bson:"tags"`
	Status      ProductStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdat"`
}

type Bid struct {
	ID        int       `json:"id" bson:"id"`
	ProductID int       `json:"productId" bson:"productid"`
	BuyerID   int       `json:"buyerId" bson:"buyerid"`
	Amount    float64   `json:"amount" bson:"amount"`
	Quantity  float64   `json:"quantity" bson:"quantity"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty"`
	Status    BidStatus `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdat"`
}

type TransportRequest struct {
	ID               int             `json:"id" bson:"id"`
	ProductID        int             `json:"productId" bson:"productid"`
	RequesterID      int             `json:"requesterId" bson:"requesterid"`
	TransporterID    *int            `json:"transporterId" bson:"transporterid"`
	PickupLocation   string          `json:"pickupLocation" bson:"pickuplocation"`
	DeliveryLocation string          `json:"deliveryLocation" bson:"deliverylocation"`
	Quantity         float64         `json:"quantity" bson:"quantity"`
	Date             time.Time       `json:"date" bson:"date"`
	Status           TransportStatus `json:"status" bson:"status"`
	CreatedAt        time.Time       `json:"createdAt" bson:"createdat"`
}

type Message struct {
	ID         int       `json:"id" bson:"id"`
	SenderID   int       `json:"senderId" bson:"senderid"`
	ReceiverID int       `json:"receiverId" bson:"receiverid"`
	Content    string    `json:"content" bson:"content"`
	Read       bool      `json:"read" bson:"read"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdat"`
}
