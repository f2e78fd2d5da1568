package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agromandi/models"
)

// MemStore keeps every record in keyed maps behind a single RWMutex.
// Monotonic ids start at 1 per entity. Composite transitions run under
// one lock acquisition, so two concurrent accepts of bids on the same
// product cannot both succeed.
type MemStore struct {
	mu sync.RWMutex

	users     map[int]models.User
	products  map[int]models.Product
	bids      map[int]models.Bid
	transport map[int]models.TransportRequest
	messages  map[int]models.Message

	userID      int
	productID   int
	bidID       int
	transportID int
	messageID   int
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:     make(map[int]models.User),
		products:  make(map[int]models.Product),
		bids:      make(map[int]models.Bid),
		transport: make(map[int]models.TransportRequest),
		messages:  make(map[int]models.Message),
	}
}

// Users

func (s *MemStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return models.User{}, ErrDuplicateUsername
		}
	}
	s.userID++
	u.ID = s.userID
	if u.Certifications == nil {
		u.Certifications = []string{}
	}
	if u.VerificationStatus == "" {
		u.VerificationStatus = models.VerificationPending
	}
	u.CreatedAt = time.Now()
	s.users[u.ID] = u
	return u, nil
}

func (s *MemStore) GetUserByID(_ context.Context, id int) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemStore) UpdateUser(_ context.Context, id int, p UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	if p.FarmName != nil {
		u.FarmName = *p.FarmName
	}
	if p.FarmBio != nil {
		u.FarmBio = *p.FarmBio
	}
	if p.FarmAddress != nil {
		u.FarmAddress = *p.FarmAddress
	}
	if p.VerificationID != nil {
		u.VerificationID = *p.VerificationID
	}
	if p.Certifications != nil {
		u.Certifications = *p.Certifications
	}
	if p.VerificationStatus != nil {
		u.VerificationStatus = *p.VerificationStatus
	}
	if p.RefreshToken != nil {
		u.RefreshToken = *p.RefreshToken
	}
	if p.RefreshExpiry != nil {
		u.RefreshExpiry = *p.RefreshExpiry
	}
	s.users[id] = u
	return u, nil
}

func (s *MemStore) GetPendingFarmerVerifications(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, u := range s.users {
		if u.Role == models.RoleFarmer && u.VerificationStatus == models.VerificationPending && u.VerificationID != "" {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Products

func (s *MemStore) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productID++
	p.ID = s.productID
	p.Status = models.ProductActive
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = time.Now()
	s.products[p.ID] = p
	return p, nil
}

func (s *MemStore) GetProducts(_ context.Context, f ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Product{}
	for _, p := range s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	switch f.Sort {
	case "price_asc":
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case "price_desc":
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case "newest":
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Product{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemStore) GetProductsByFarmerID(_ context.Context, farmerID int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Product{}
	for _, p := range s.products {
		if p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetProductByID(_ context.Context, id int) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) UpdateProduct(_ context.Context, id int, patch ProductPatch) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProductLocked(id, patch)
}

func (s *MemStore) updateProductLocked(id int, patch ProductPatch) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	s.products[id] = p
	return p, nil
}

func (s *MemStore) ExpireProductsBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.products {
		if p.Status != models.ProductActive || !p.CreatedAt.Before(cutoff) {
			continue
		}
		if err := models.TransitionProduct(p.Status, models.ProductExpired); err != nil {
			continue
		}
		p.Status = models.ProductExpired
		s.products[id] = p
		n++
	}
	return n, nil
}

// Bids

func (s *MemStore) CreateBid(_ context.Context, b models.Bid) (models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bidID++
	b.ID = s.bidID
	b.Status = models.BidPending
	b.CreatedAt = time.Now()
	s.bids[b.ID] = b
	return b, nil
}

func (s *MemStore) GetBidsByProductID(_ context.Context, productID int) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Bid{}
	for _, b := range s.bids {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetBidsByBuyerID(_ context.Context, buyerID int) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Bid{}
	for _, b := range s.bids {
		if b.BuyerID == buyerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetBidByID(_ context.Context, id int) (models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bids[id]
	if !ok {
		return models.Bid{}, ErrNotFound
	}
	return b, nil
}

func (s *MemStore) UpdateBidStatus(_ context.Context, id int, status models.BidStatus) (models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok {
		return models.Bid{}, ErrNotFound
	}
	if err := models.TransitionBid(b.Status, status); err != nil {
		return models.Bid{}, err
	}
	b.Status = status
	s.bids[id] = b
	return b, nil
}

func (s *MemStore) AcceptBid(_ context.Context, id int) (models.Bid, models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok {
		return models.Bid{}, models.Product{}, ErrNotFound
	}
	p, ok := s.products[b.ProductID]
	if !ok {
		return models.Bid{}, models.Product{}, ErrNotFound
	}
	if err := models.TransitionBid(b.Status, models.BidAccepted); err != nil {
		return models.Bid{}, models.Product{}, err
	}
	if err := models.TransitionProduct(p.Status, models.ProductSold); err != nil {
		return models.Bid{}, models.Product{}, err
	}
	b.Status = models.BidAccepted
	p.Status = models.ProductSold
	s.bids[id] = b
	s.products[p.ID] = p
	return b, p, nil
}

// Transport requests

func (s *MemStore) CreateTransportRequest(_ context.Context, t models.TransportRequest) (models.TransportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transportID++
	t.ID = s.transportID
	t.TransporterID = nil
	t.Status = models.TransportPending
	t.CreatedAt = time.Now()
	s.transport[t.ID] = t
	return t, nil
}

func (s *MemStore) GetTransportRequestsByRequesterID(_ context.Context, requesterID int) ([]models.TransportRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TransportRequest{}
	for _, t := range s.transport {
		if t.RequesterID == requesterID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetTransportRequestsByTransporterID(_ context.Context, transporterID int) ([]models.TransportRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TransportRequest{}
	for _, t := range s.transport {
		if t.TransporterID != nil && *t.TransporterID == transporterID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetAvailableTransportRequests(_ context.Context) ([]models.TransportRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TransportRequest{}
	for _, t := range s.transport {
		if t.TransporterID == nil && t.Status == models.TransportPending {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetTransportRequestByID(_ context.Context, id int) (models.TransportRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transport[id]
	if !ok {
		return models.TransportRequest{}, ErrNotFound
	}
	return t, nil
}

func (s *MemStore) ClaimTransportRequest(_ context.Context, id, transporterID int) (models.TransportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transport[id]
	if !ok {
		return models.TransportRequest{}, ErrNotFound
	}
	if t.TransporterID != nil {
		return models.TransportRequest{}, ErrAlreadyClaimed
	}
	if err := models.TransitionTransport(t.Status, models.TransportAccepted); err != nil {
		return models.TransportRequest{}, err
	}
	t.TransporterID = &transporterID
	t.Status = models.TransportAccepted
	s.transport[id] = t
	return t, nil
}

func (s *MemStore) UpdateTransportRequestStatus(_ context.Context, id int, status models.TransportStatus) (models.TransportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transport[id]
	if !ok {
		return models.TransportRequest{}, ErrNotFound
	}
	if err := models.TransitionTransport(t.Status, status); err != nil {
		return models.TransportRequest{}, err
	}
	t.Status = status
	s.transport[id] = t
	return t, nil
}

// Messages

func (s *MemStore) CreateMessage(_ context.Context, m models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageID++
	m.ID = s.messageID
	m.Read = false
	m.CreatedAt = time.Now()
	s.messages[m.ID] = m
	return m, nil
}

func (s *MemStore) GetMessagesBetweenUsers(_ context.Context, user1ID, user2ID int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if (m.SenderID == user1ID && m.ReceiverID == user2ID) || (m.SenderID == user2ID && m.ReceiverID == user1ID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) GetUnreadMessagesByUserID(_ context.Context, userID int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.Read {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetMessageByID(_ context.Context, id int) (models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return models.Message{}, ErrNotFound
	}
	return m, nil
}

func (s *MemStore) MarkMessageRead(_ context.Context, id int) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return models.Message{}, ErrNotFound
	}
	m.Read = true
	s.messages[id] = m
	return m, nil
}
