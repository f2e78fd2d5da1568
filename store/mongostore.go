package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"agromandi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on MongoDB. Integer ids come from a
// counters collection; the composite transitions rely on compare-and-swap
// filters so a stale status or an already-set transporter never matches.
type MongoStore struct {
	client    *mongo.Client
	users     *mongo.Collection
	products  *mongo.Collection
	bids      *mongo.Collection
	transport *mongo.Collection
	messages  *mongo.Collection
	counters  *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	d := client.Database(dbName)
	return &MongoStore{
		client:    client,
		users:     d.Collection("users"),
		products:  d.Collection("products"),
		bids:      d.Collection("bids"),
		transport: d.Collection("transport_requests"),
		messages:  d.Collection("messages"),
		counters:  d.Collection("counters"),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) nextID(ctx context.Context, name string) (int, error) {
	var doc struct {
		Seq int `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", name, err)
	}
	return doc.Seq, nil
}

// Users

func (s *MongoStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := s.users.FindOne(ctx, bson.M{"username": u.Username}).Err(); err == nil {
		return models.User{}, ErrDuplicateUsername
	} else if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}
	id, err := s.nextID(ctx, "users")
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	if u.Certifications == nil {
		u.Certifications = []string{}
	}
	if u.VerificationStatus == "" {
		u.VerificationStatus = models.VerificationPending
	}
	u.CreatedAt = time.Now()
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *MongoStore) UpdateUser(ctx context.Context, id int, p UserPatch) (models.User, error) {
	set := bson.M{}
	if p.FullName != nil {
		set["fullname"] = *p.FullName
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.ProfilePicture != nil {
		set["profilepicture"] = *p.ProfilePicture
	}
	if p.FarmName != nil {
		set["farmname"] = *p.FarmName
	}
	if p.FarmBio != nil {
		set["farmbio"] = *p.FarmBio
	}
	if p.FarmAddress != nil {
		set["farmaddress"] = *p.FarmAddress
	}
	if p.VerificationID != nil {
		set["verificationid"] = *p.VerificationID
	}
	if p.Certifications != nil {
		set["certifications"] = *p.Certifications
	}
	if p.VerificationStatus != nil {
		set["verificationstatus"] = *p.VerificationStatus
	}
	if p.RefreshToken != nil {
		set["refresh_token"] = *p.RefreshToken
	}
	if p.RefreshExpiry != nil {
		set["refresh_expiry"] = *p.RefreshExpiry
	}
	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *MongoStore) GetPendingFarmerVerifications(ctx context.Context) ([]models.User, error) {
	filter := bson.M{
		"role":               models.RoleFarmer,
		"verificationstatus": models.VerificationPending,
		"verificationid":     bson.M{"$nin": bson.A{"", nil}},
	}
	return decodeAll[models.User](ctx, s.users, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

// Products

func (s *MongoStore) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	id, err := s.nextID(ctx, "products")
	if err != nil {
		return models.Product{}, err
	}
	p.ID = id
	p.Status = models.ProductActive
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = time.Now()
	if _, err := s.products.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *MongoStore) GetProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}}
	}
	sortDoc := bson.D{{Key: "id", Value: 1}}
	switch f.Sort {
	case "price_asc":
		sortDoc = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sortDoc = bson.D{{Key: "price", Value: -1}}
	case "newest":
		sortDoc = bson.D{{Key: "id", Value: -1}}
	}
	opts := options.Find().SetSort(sortDoc)
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return decodeAll[models.Product](ctx, s.products, filter, opts)
}

func (s *MongoStore) GetProductsByFarmerID(ctx context.Context, farmerID int) ([]models.Product, error) {
	return decodeAll[models.Product](ctx, s.products, bson.M{"farmerid": farmerID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetProductByID(ctx context.Context, id int) (models.Product, error) {
	var p models.Product
	err := s.products.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (s *MongoStore) UpdateProduct(ctx context.Context, id int, patch ProductPatch) (models.Product, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Unit != nil {
		set["unit"] = *patch.Unit
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	var p models.Product
	err := s.products.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (s *MongoStore) ExpireProductsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.products.UpdateMany(ctx,
		bson.M{"status": models.ProductActive, "createdat": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": models.ProductExpired}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

// Bids

func (s *MongoStore) CreateBid(ctx context.Context, b models.Bid) (models.Bid, error) {
	id, err := s.nextID(ctx, "bids")
	if err != nil {
		return models.Bid{}, err
	}
	b.ID = id
	b.Status = models.BidPending
	b.CreatedAt = time.Now()
	if _, err := s.bids.InsertOne(ctx, b); err != nil {
		return models.Bid{}, err
	}
	return b, nil
}

func (s *MongoStore) GetBidsByProductID(ctx context.Context, productID int) ([]models.Bid, error) {
	return decodeAll[models.Bid](ctx, s.bids, bson.M{"productid": productID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetBidsByBuyerID(ctx context.Context, buyerID int) ([]models.Bid, error) {
	return decodeAll[models.Bid](ctx, s.bids, bson.M{"buyerid": buyerID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetBidByID(ctx context.Context, id int) (models.Bid, error) {
	var b models.Bid
	err := s.bids.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Bid{}, ErrNotFound
	}
	return b, err
}

func (s *MongoStore) UpdateBidStatus(ctx context.Context, id int, status models.BidStatus) (models.Bid, error) {
	cur, err := s.GetBidByID(ctx, id)
	if err != nil {
		return models.Bid{}, err
	}
	if err := models.TransitionBid(cur.Status, status); err != nil {
		return models.Bid{}, err
	}
	var b models.Bid
	err = s.bids.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": cur.Status},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err == mongo.ErrNoDocuments {
		// lost the race: someone moved the bid first
		return models.Bid{}, models.ErrInvalidTransition
	}
	return b, err
}

func (s *MongoStore) AcceptBid(ctx context.Context, id int) (models.Bid, models.Product, error) {
	cur, err := s.GetBidByID(ctx, id)
	if err != nil {
		return models.Bid{}, models.Product{}, err
	}
	if _, err := s.GetProductByID(ctx, cur.ProductID); err != nil {
		return models.Bid{}, models.Product{}, err
	}

	var b models.Bid
	err = s.bids.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": models.BidPending},
		bson.M{"$set": bson.M{"status": models.BidAccepted}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Bid{}, models.Product{}, models.ErrInvalidTransition
	}
	if err != nil {
		return models.Bid{}, models.Product{}, err
	}

	var p models.Product
	err = s.products.FindOneAndUpdate(ctx,
		bson.M{"id": b.ProductID, "status": models.ProductActive},
		bson.M{"$set": bson.M{"status": models.ProductSold}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		// product already sold or expired: undo the bid flip
		s.bids.UpdateOne(ctx,
			bson.M{"id": id, "status": models.BidAccepted},
			bson.M{"$set": bson.M{"status": models.BidPending}},
		)
		return models.Bid{}, models.Product{}, models.ErrInvalidTransition
	}
	if err != nil {
		return models.Bid{}, models.Product{}, err
	}
	return b, p, nil
}

// Transport requests

func (s *MongoStore) CreateTransportRequest(ctx context.Context, t models.TransportRequest) (models.TransportRequest, error) {
	id, err := s.nextID(ctx, "transport_requests")
	if err != nil {
		return models.TransportRequest{}, err
	}
	t.ID = id
	t.TransporterID = nil
	t.Status = models.TransportPending
	t.CreatedAt = time.Now()
	if _, err := s.transport.InsertOne(ctx, t); err != nil {
		return models.TransportRequest{}, err
	}
	return t, nil
}

func (s *MongoStore) GetTransportRequestsByRequesterID(ctx context.Context, requesterID int) ([]models.TransportRequest, error) {
	return decodeAll[models.TransportRequest](ctx, s.transport, bson.M{"requesterid": requesterID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetTransportRequestsByTransporterID(ctx context.Context, transporterID int) ([]models.TransportRequest, error) {
	return decodeAll[models.TransportRequest](ctx, s.transport, bson.M{"transporterid": transporterID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetAvailableTransportRequests(ctx context.Context) ([]models.TransportRequest, error) {
	filter := bson.M{"transporterid": nil, "status": models.TransportPending}
	return decodeAll[models.TransportRequest](ctx, s.transport, filter,
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetTransportRequestByID(ctx context.Context, id int) (models.TransportRequest, error) {
	var t models.TransportRequest
	err := s.transport.FindOne(ctx, bson.M{"id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.TransportRequest{}, ErrNotFound
	}
	return t, err
}

func (s *MongoStore) ClaimTransportRequest(ctx context.Context, id, transporterID int) (models.TransportRequest, error) {
	var t models.TransportRequest
	err := s.transport.FindOneAndUpdate(ctx,
		bson.M{"id": id, "transporterid": nil, "status": models.TransportPending},
		bson.M{"$set": bson.M{"transporterid": transporterID, "status": models.TransportAccepted}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err == nil {
		return t, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.TransportRequest{}, err
	}
	cur, gerr := s.GetTransportRequestByID(ctx, id)
	if gerr != nil {
		return models.TransportRequest{}, gerr
	}
	if cur.TransporterID != nil {
		return models.TransportRequest{}, ErrAlreadyClaimed
	}
	return models.TransportRequest{}, models.ErrInvalidTransition
}

func (s *MongoStore) UpdateTransportRequestStatus(ctx context.Context, id int, status models.TransportStatus) (models.TransportRequest, error) {
	cur, err := s.GetTransportRequestByID(ctx, id)
	if err != nil {
		return models.TransportRequest{}, err
	}
	if err := models.TransitionTransport(cur.Status, status); err != nil {
		return models.TransportRequest{}, err
	}
	var t models.TransportRequest
	err = s.transport.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": cur.Status},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.TransportRequest{}, models.ErrInvalidTransition
	}
	return t, err
}

// Messages

func (s *MongoStore) CreateMessage(ctx context.Context, m models.Message) (models.Message, error) {
	id, err := s.nextID(ctx, "messages")
	if err != nil {
		return models.Message{}, err
	}
	m.ID = id
	m.Read = false
	m.CreatedAt = time.Now()
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

func (s *MongoStore) GetMessagesBetweenUsers(ctx context.Context, user1ID, user2ID int) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderid": user1ID, "receiverid": user2ID},
		bson.M{"senderid": user2ID, "receiverid": user1ID},
	}}
	return decodeAll[models.Message](ctx, s.messages, filter,
		options.Find().SetSort(bson.D{{Key: "createdat", Value: 1}, {Key: "id", Value: 1}}))
}

func (s *MongoStore) GetUnreadMessagesByUserID(ctx context.Context, userID int) ([]models.Message, error) {
	return decodeAll[models.Message](ctx, s.messages, bson.M{"receiverid": userID, "read": false},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (s *MongoStore) GetMessageByID(ctx context.Context, id int) (models.Message, error) {
	var m models.Message
	err := s.messages.FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Message{}, ErrNotFound
	}
	return m, err
}

func (s *MongoStore) MarkMessageRead(ctx context.Context, id int) (models.Message, error) {
	var m models.Message
	err := s.messages.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Message{}, ErrNotFound
	}
	return m, err
}

func decodeAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
