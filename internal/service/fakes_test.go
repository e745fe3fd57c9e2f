package service_test

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// memStore - хранилище в памяти, реализует все репозитории сразу
type memStore struct {
	mu sync.Mutex

	nextID     int64
	clock      time.Time
	users      map[int64]models.User
	locations  map[int64]models.Location
	businesses map[int64]models.Business
	menu       []models.MenuItem
	reviews    []models.Review
	favorites  map[[2]int64]time.Time
	orders     map[int64]models.Order
	items      map[int64]models.OrderItem

	// failOn - ошибка, которую вернёт метод с таким именем
	failOn map[string]error
}

var (
	_ storage.UserStorage      = (*memStore)(nil)
	_ storage.LocationStorage  = (*memStore)(nil)
	_ storage.BusinessStorage  = (*memStore)(nil)
	_ storage.MenuStorage      = (*memStore)(nil)
	_ storage.ReviewStorage    = (*memStore)(nil)
	_ storage.FavoriteStorage  = (*memStore)(nil)
	_ storage.OrderStorage     = (*memStore)(nil)
	_ storage.OrderItemStorage = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:      make(map[int64]models.User),
		locations:  make(map[int64]models.Location),
		businesses: make(map[int64]models.Business),
		favorites:  make(map[[2]int64]time.Time),
		orders:     make(map[int64]models.Order),
		items:      make(map[int64]models.OrderItem),
		failOn:     make(map[string]error),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) fail(method string) error {
	return m.failOn[method]
}

type memSnapshot struct {
	nextID     int64
	users      map[int64]models.User
	locations  map[int64]models.Location
	businesses map[int64]models.Business
	favorites  map[[2]int64]time.Time
	orders     map[int64]models.Order
	items      map[int64]models.OrderItem
	reviews    []models.Review
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		nextID:     m.nextID,
		users:      copyMap(m.users),
		locations:  copyMap(m.locations),
		businesses: copyMap(m.businesses),
		favorites:  copyMap(m.favorites),
		orders:     copyMap(m.orders),
		items:      copyMap(m.items),
		reviews:    append([]models.Review(nil), m.reviews...),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = s.nextID
	m.users = s.users
	m.locations = s.locations
	m.businesses = s.businesses
	m.favorites = s.favorites
	m.orders = s.orders
	m.items = s.items
	m.reviews = s.reviews
}

// fakeTxManager откатывает memStore к снимку, если функция вернула ошибку
type fakeTxManager struct {
	store *memStore
}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// --- тестовые данные ---

func (m *memStore) addUser(email string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.users[id] = models.User{ID: id, Email: email, FirstName: "Test", Phone: "0500000000"}
	return id
}

func (m *memStore) addBusiness(name string, avg float64, delivered int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.businesses[id] = models.Business{
		ID: id, Type: models.BusinessRestaurant, Name: name, City: "Tel Aviv",
		Categories: []string{"pizza"}, AvgDeliveryTime: avg, DeliveredOrders: delivered,
	}
	return id
}

func (m *memStore) addLocation(userID int64, address string, isLast bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.locations[id] = models.Location{ID: id, UserID: userID, Type: models.LocationHome, Address: address, IsLast: isLast}
	return id
}

func (m *memStore) cartOrders(userID int64) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []models.Order
	for _, o := range m.orders {
		if o.UserID == userID && !o.HasSent {
			res = append(res, o)
		}
	}
	return res
}

func (m *memStore) orderItems(orderID int64) []models.OrderItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []models.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			res = append(res, it)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// --- UserStorage ---

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) || u.Phone == user.Phone {
			return nil, storage.ErrUserExists
		}
	}
	user.ID = m.id()
	m.users[user.ID] = *user
	return user, nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	if err := m.fail("LockUserByIDTx"); err != nil {
		return nil, err
	}
	return m.GetUserByID(ctx, id)
}

func (m *memStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && (strings.EqualFold(u.Email, user.Email) || u.Phone == user.Phone) {
			return storage.ErrUserExists
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// --- LocationStorage ---

func (m *memStore) GetLocations(ctx context.Context, userID int64) ([]*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.Location, 0)
	for _, l := range m.locations {
		if l.UserID == userID {
			l := l
			res = append(res, &l)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memStore) GetLocationsTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.Location, error) {
	return m.GetLocations(ctx, userID)
}

func (m *memStore) AddLocation(ctx context.Context, loc *models.Location) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc.ID = m.id()
	m.locations[loc.ID] = *loc
	return loc, nil
}

func (m *memStore) RemoveLocation(ctx context.Context, userID int64, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, l := range m.locations {
		if l.UserID == userID && strings.EqualFold(l.Address, address) {
			delete(m.locations, id)
			return nil
		}
	}
	return storage.ErrLocationNotFound
}

func (m *memStore) SetLastLocationTx(ctx context.Context, tx *sql.Tx, userID, locationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.locations[locationID]
	if !ok || target.UserID != userID {
		return storage.ErrLocationNotFound
	}
	for id, l := range m.locations {
		if l.UserID == userID {
			l.IsLast = id == locationID
			m.locations[id] = l
		}
	}
	return nil
}

// --- BusinessStorage, MenuStorage, ReviewStorage ---

func (m *memStore) ListBusinesses(ctx context.Context, filter storage.BusinessFilter) ([]*models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.Business, 0)
	for _, b := range m.businesses {
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		if filter.City != "" && !strings.EqualFold(b.City, filter.City) {
			continue
		}
		if filter.Category != "" && !contains(b.Categories, filter.Category) {
			continue
		}
		b := b
		res = append(res, &b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (m *memStore) GetBusinessByID(ctx context.Context, id int64) (*models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return nil, storage.ErrBusinessNotFound
	}
	return &b, nil
}

func (m *memStore) LockBusinessByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Business, error) {
	return m.GetBusinessByID(ctx, id)
}

func (m *memStore) UpdateDeliveryStatsTx(ctx context.Context, tx *sql.Tx, id int64, avg float64, delivered int) error {
	if err := m.fail("UpdateDeliveryStatsTx"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return storage.ErrBusinessNotFound
	}
	b.AvgDeliveryTime = avg
	b.DeliveredOrders = delivered
	m.businesses[id] = b
	return nil
}

func (m *memStore) GetMenu(ctx context.Context, businessID int64) ([]*models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.MenuItem, 0)
	for _, it := range m.menu {
		if it.BusinessID == businessID {
			it := it
			res = append(res, &it)
		}
	}
	return res, nil
}

func (m *memStore) GetReviews(ctx context.Context, businessID int64) ([]*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.Review, 0)
	for _, r := range m.reviews {
		if r.BusinessID == businessID {
			r := r
			res = append(res, &r)
		}
	}
	return res, nil
}

func (m *memStore) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.ID = m.id()
	review.CreatedAt = m.tick()
	m.reviews = append(m.reviews, *review)
	return review, nil
}

// --- FavoriteStorage ---

func (m *memStore) GetFavorites(ctx context.Context, userID int64) ([]*models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.Business, 0)
	for key := range m.favorites {
		if key[0] == userID {
			b := m.businesses[key[1]]
			res = append(res, &b)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memStore) IsFavorite(ctx context.Context, userID, businessID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[[2]int64{userID, businessID}]
	return ok, nil
}

func (m *memStore) AddFavorite(ctx context.Context, userID, businessID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.businesses[businessID]; !ok {
		return storage.ErrBusinessNotFound
	}
	key := [2]int64{userID, businessID}
	if _, ok := m.favorites[key]; ok {
		return storage.ErrAlreadyFavorite
	}
	m.favorites[key] = m.tick()
	return nil
}

func (m *memStore) RemoveFavorite(ctx context.Context, userID, businessID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{userID, businessID}
	if _, ok := m.favorites[key]; !ok {
		return storage.ErrNotFavorite
	}
	delete(m.favorites, key)
	return nil
}

// --- OrderStorage ---

func (m *memStore) selectOrders(filter func(o models.Order) bool) []*models.Order {
	res := make([]*models.Order, 0)
	for _, o := range m.orders {
		if filter(o) {
			o := o
			res = append(res, &o)
		}
	}
	// новые первыми
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res
}

func (m *memStore) GetCartTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectOrders(func(o models.Order) bool { return o.UserID == userID && !o.HasSent }), nil
}

func (m *memStore) GetOrdersByUserID(ctx context.Context, userID int64, sent bool) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectOrders(func(o models.Order) bool { return o.UserID == userID && o.HasSent == sent }), nil
}

func (m *memStore) GetOrdersByUserAndBusiness(ctx context.Context, userID, businessID int64) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectOrders(func(o models.Order) bool { return o.UserID == userID && o.BusinessID == businessID }), nil
}

func (m *memStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return &o, nil
}

func (m *memStore) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	return m.GetOrderByID(ctx, id)
}

func (m *memStore) HasSentOrderFromBusiness(ctx context.Context, userID, businessID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.UserID == userID && o.BusinessID == businessID && o.HasSent {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// как частичный уникальный индекс idx_orders_cart
	for _, o := range m.orders {
		if o.UserID == order.UserID && o.BusinessID == order.BusinessID && !o.HasSent {
			return nil, storage.ErrConflict
		}
	}
	order.ID = m.id()
	order.CreatedAt = m.tick()
	m.orders[order.ID] = *order
	return order, nil
}

func (m *memStore) DeleteOrderTx(ctx context.Context, tx *sql.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return storage.ErrOrderNotFound
	}
	delete(m.orders, id)
	for itemID, it := range m.items {
		if it.OrderID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *memStore) UpdateOrderTotalTx(ctx context.Context, tx *sql.Tx, id int64, total decimal.Decimal) error {
	if err := m.fail("UpdateOrderTotalTx"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.TotalPrice = total
	m.orders[id] = o
	return nil
}

func (m *memStore) MarkCartSentTx(ctx context.Context, tx *sql.Tx, userID int64, address string, sentAt time.Time) (int64, error) {
	if err := m.fail("MarkCartSentTx"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, o := range m.orders {
		if o.UserID == userID && !o.HasSent {
			at := sentAt
			o.HasSent = true
			o.SentAt = &at
			o.DeliveryAddress = address
			m.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (m *memStore) SetDeliveringTimeTx(ctx context.Context, tx *sql.Tx, id int64, minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || !o.HasSent || o.DeliveringTime != nil {
		return storage.ErrOrderNotFound
	}
	v := minutes
	o.DeliveringTime = &v
	m.orders[id] = o
	return nil
}

// --- OrderItemStorage ---

func (m *memStore) GetItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]*models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}
	res := make([]*models.OrderItem, 0)
	for _, it := range m.items {
		if wanted[it.OrderID] {
			it := it
			res = append(res, &it)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memStore) GetItemsByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]*models.OrderItem, error) {
	return m.GetItemsByOrderIDs(ctx, []int64{orderID})
}

func (m *memStore) CreateItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) (*models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.OrderID == item.OrderID && it.SectionTitle == item.SectionTitle && it.Name == item.Name {
			return nil, storage.ErrConflict
		}
	}
	item.ID = m.id()
	m.items[item.ID] = *item
	return item, nil
}

func (m *memStore) UpdateItemQuantityTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return storage.ErrItemNotFound
	}
	it.Quantity = quantity
	m.items[id] = it
	return nil
}

func (m *memStore) DeleteItemTx(ctx context.Context, tx *sql.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return storage.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}
