package seed

import (
	"context"
	"log"
	"time"

	"agromandi/models"
	"agromandi/store"

	"golang.org/x/crypto/bcrypt"
)

// Load populates the store with demo accounts and listings. It is meant
// for local development; enable it with SEED_DEMO_DATA=true. Seeding is
// skipped when any users already exist.
func Load(ctx context.Context) error {
	existing, err := store.DB.GetUserByUsername(ctx, "ramesh_farmer")
	if err == nil && existing.ID != 0 {
		log.Println("seed: demo data already present, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	pw := string(hash)

	farmer, err := store.DB.CreateUser(ctx, models.User{
		Username:           "ramesh_farmer",
		Password:           pw,
		FullName:           "Ramesh Patel",
		Email:              "ramesh@example.com",
		Phone:              "+91 98765 43210",
		Role:               models.RoleFarmer,
		Location:           "Nashik, Maharashtra",
		FarmName:           "Patel Organic Farm",
		FarmBio:            "Three generations of organic farming in the Nashik valley.",
		FarmAddress:        "Village Pimpalgaon, Nashik",
		Certifications:     []string{"India Organic", "APEDA"},
		VerificationStatus: models.VerificationVerified,
	})
	if err != nil {
		return err
	}

	buyer, err := store.DB.CreateUser(ctx, models.User{
		Username: "priya_buyer",
		Password: pw,
		FullName: "Priya Sharma",
		Email:    "priya@example.com",
		Phone:    "+91 98765 11111",
		Role:     models.RoleBuyer,
		Location: "Mumbai, Maharashtra",
	})
	if err != nil {
		return err
	}

	middleman, err := store.DB.CreateUser(ctx, models.User{
		Username: "vikram_trader",
		Password: pw,
		FullName: "Vikram Singh",
		Email:    "vikram@example.com",
		Phone:    "+91 98765 22222",
		Role:     models.RoleMiddleman,
		Location: "Pune, Maharashtra",
	})
	if err != nil {
		return err
	}

	transporter, err := store.DB.CreateUser(ctx, models.User{
		Username: "suresh_logistics",
		Password: pw,
		FullName: "Suresh Kumar",
		Email:    "suresh@example.com",
		Phone:    "+91 98765 33333",
		Role:     models.RoleTransporter,
		Location: "Nashik, Maharashtra",
	})
	if err != nil {
		return err
	}

	if _, err := store.DB.CreateUser(ctx, models.User{
		Username: "admin",
		Password: pw,
		FullName: "Marketplace Admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}); err != nil {
		return err
	}

	onions, err := store.DB.CreateProduct(ctx, models.Product{
		FarmerID:    farmer.ID,
		Name:        "Red Onions",
		Category:    "Vegetables",
		Description: "Fresh red onions, harvested this week.",
		Quantity:    500,
		Unit:        "kg",
		Price:       22.50,
		Location:    "Nashik, Maharashtra",
		Tags:        []string{"fresh", "organic"},
		Status:      models.ProductActive,
	})
	if err != nil {
		return err
	}

	wheat, err := store.DB.CreateProduct(ctx, models.Product{
		FarmerID:    farmer.ID,
		Name:        "Sharbati Wheat",
		Category:    "Grains",
		Description: "Premium sharbati wheat, low moisture.",
		Quantity:    2,
		Unit:        "tonne",
		Price:       28000,
		Location:    "Nashik, Maharashtra",
		Tags:        []string{"premium"},
		Status:      models.ProductActive,
	})
	if err != nil {
		return err
	}

	if _, err := store.DB.CreateBid(ctx, models.Bid{
		ProductID: onions.ID,
		BuyerID:   buyer.ID,
		Amount:    21.00,
		Quantity:  200,
		Message:   "Can you deliver to Mumbai by Friday?",
		Status:    models.BidPending,
	}); err != nil {
		return err
	}

	if _, err := store.DB.CreateBid(ctx, models.Bid{
		ProductID: wheat.ID,
		BuyerID:   middleman.ID,
		Amount:    27500,
		Quantity:  2,
		Status:    models.BidPending,
	}); err != nil {
		return err
	}

	if _, err := store.DB.CreateTransportRequest(ctx, models.TransportRequest{
		ProductID:        onions.ID,
		RequesterID:      farmer.ID,
		PickupLocation:   "Nashik, Maharashtra",
		DeliveryLocation: "Mumbai, Maharashtra",
		Quantity:         200,
		Date:             time.Now().AddDate(0, 0, 3),
		Status:           models.TransportPending,
	}); err != nil {
		return err
	}

	if _, err := store.DB.CreateMessage(ctx, models.Message{
		SenderID:   buyer.ID,
		ReceiverID: farmer.ID,
		Content:    "Hi Ramesh, are the onions still available?",
	}); err != nil {
		return err
	}
	if _, err := store.DB.CreateMessage(ctx, models.Message{
		SenderID:   farmer.ID,
		ReceiverID: buyer.ID,
		Content:    "Yes, 500kg in stock. Place a bid and I will confirm.",
	}); err != nil {
		return err
	}

	log.Printf("seed: loaded demo data (farmer=%d buyer=%d transporter=%d)", farmer.ID, buyer.ID, transporter.ID)
	return nil
}
