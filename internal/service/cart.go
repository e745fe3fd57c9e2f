package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/lib/keylock"
	"github.com/linemk/wolt-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// Outcome - что произошло с корзиной после EditOrder
type Outcome string

const (
	OutcomeOrderCreated    Outcome = "order_created"
	OutcomeItemAdded       Outcome = "item_added"
	OutcomeQuantityUpdated Outcome = "quantity_updated"
	OutcomeItemRemoved     Outcome = "item_removed"
	OutcomeOrderDeleted    Outcome = "order_deleted"
)

// EditOrderInput - запрос "установить количество позиции в заказе заведения".
// Quantity - итоговое количество, а не приращение.
type EditOrderInput struct {
	ShopID          int64
	MenuItemID      int64
	SectionTitle    string
	ItemName        string
	ItemImage       string
	ItemDescription string
	PricePerUnit    decimal.Decimal
	Quantity        int
	Extras          []string
}

type EditResult struct {
	Outcome    Outcome         `json:"outcome"`
	OrderID    int64           `json:"orderID"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type CartServiceInterface interface {
	EditOrder(ctx context.Context, userID int64, in EditOrderInput) (*EditResult, error)
	// SendOrders отправляет всю корзину и возвращает число отправленных заказов
	SendOrders(ctx context.Context, userID int64, currentAddress string) (int, error)
	GetCart(ctx context.Context, userID int64) ([]*models.Order, error)
}

type CartService struct {
	log       *slog.Logger
	txm       storage.TxManager
	locks     *keylock.KeyLock[int64]
	userRepo  storage.UserStorage
	bizRepo   storage.BusinessStorage
	orderRepo storage.OrderStorage
	itemRepo  storage.OrderItemStorage
	locRepo   storage.LocationStorage
	now       func() time.Time
}

func NewCartService(
	log *slog.Logger,
	txm storage.TxManager,
	userRepo storage.UserStorage,
	bizRepo storage.BusinessStorage,
	orderRepo storage.OrderStorage,
	itemRepo storage.OrderItemStorage,
	locRepo storage.LocationStorage,
) *CartService {
	return &CartService{
		log:       log,
		txm:       txm,
		locks:     keylock.New[int64](),
		userRepo:  userRepo,
		bizRepo:   bizRepo,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		locRepo:   locRepo,
		now:       time.Now,
	}
}

// EditOrder добавляет, меняет или удаляет позицию в заказе пользователя из заведения in.ShopID.
// У пользователя не больше одного неотправленного заказа на заведение, пустые заказы удаляются.
func (s *CartService) EditOrder(ctx context.Context, userID int64, in EditOrderInput) (*EditResult, error) {
	const op = "service.CartService.EditOrder"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("shopID", in.ShopID),
		slog.String("item", in.ItemName),
		slog.Int("quantity", in.Quantity),
	)

	if err := validateEditInput(in); err != nil {
		logger.Warn("invalid edit order request", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.bizRepo.GetBusinessByID(ctx, in.ShopID); err != nil {
		if errors.Is(err, storage.ErrBusinessNotFound) {
			return nil, fmt.Errorf("%s: %w", op, NotFoundError("unknown business"))
		}
		logger.Error("failed to get business", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get business: %w", op, err)
	}

	var res *EditResult
	err := s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
		// блокировка строки пользователя сериализует изменения корзины между процессами
		if _, err := s.userRepo.LockUserByIDTx(ctx, tx, userID); err != nil {
			return err
		}

		cart, err := s.orderRepo.GetCartTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}

		order := findShopOrder(cart, in.ShopID)
		if order == nil {
			res, err = s.createOrder(ctx, tx, userID, in)
			return err
		}

		res, err = s.editExistingOrder(ctx, tx, order, in)
		return err
	})
	if err != nil {
		err = fromStorage(err)
		var svcErr *Error
		if errors.As(err, &svcErr) {
			logger.Warn("edit order rejected", slog.Any("error", err))
		} else {
			logger.Error("edit order failed", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order edited",
		slog.String("outcome", string(res.Outcome)),
		slog.Int64("orderID", res.OrderID),
		slog.String("total", res.TotalPrice.String()),
	)
	return res, nil
}

func validateEditInput(in EditOrderInput) error {
	switch {
	case in.Quantity < 0:
		return ValidationError("quantity must not be negative")
	case in.PricePerUnit.IsNegative():
		return ValidationError("price must not be negative")
	// цены хранятся в NUMERIC(10,2), иначе сумма в ответе разойдется с сохраненной
	case !in.PricePerUnit.Equal(in.PricePerUnit.Round(2)):
		return ValidationError("price must have at most 2 decimal places")
	case strings.TrimSpace(in.ItemName) == "":
		return ValidationError("item name is required")
	case strings.TrimSpace(in.SectionTitle) == "":
		return ValidationError("section title is required")
	}
	return nil
}

func findShopOrder(cart []*models.Order, shopID int64) *models.Order {
	for _, o := range cart {
		if o.BusinessID == shopID {
			return o
		}
	}
	return nil
}

func newOrderItem(orderID int64, in EditOrderInput) *models.OrderItem {
	extras := in.Extras
	if extras == nil {
		extras = []string{}
	}
	return &models.OrderItem{
		OrderID:      orderID,
		MenuID:       in.MenuItemID,
		Name:         in.ItemName,
		Image:        in.ItemImage,
		Description:  in.ItemDescription,
		SectionTitle: in.SectionTitle,
		PricePerUnit: in.PricePerUnit,
		Quantity:     in.Quantity,
		Extras:       extras,
	}
}

func (s *CartService) createOrder(ctx context.Context, tx *sql.Tx, userID int64, in EditOrderInput) (*EditResult, error) {
	if in.Quantity <= 0 {
		return nil, ValidationError("quantity must be positive for a new order")
	}

	order, err := s.orderRepo.CreateOrderTx(ctx, tx, &models.Order{
		UserID:     userID,
		BusinessID: in.ShopID,
		TotalPrice: decimal.Zero,
	})
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.CreateItemTx(ctx, tx, newOrderItem(order.ID, in))
	if err != nil {
		return nil, err
	}
	order.Items = []*models.OrderItem{item}

	return s.saveTotal(ctx, tx, order, OutcomeOrderCreated)
}

func (s *CartService) editExistingOrder(ctx context.Context, tx *sql.Tx, order *models.Order, in EditOrderInput) (*EditResult, error) {
	items, err := s.itemRepo.GetItemsByOrderIDTx(ctx, tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	var outcome Outcome
	idx, item := order.FindItem(in.SectionTitle, in.ItemName)
	switch {
	case item == nil:
		if in.Quantity <= 0 {
			return nil, ValidationError("quantity must be positive for a new item")
		}
		created, err := s.itemRepo.CreateItemTx(ctx, tx, newOrderItem(order.ID, in))
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, created)
		outcome = OutcomeItemAdded

	case in.Quantity == 0:
		if err := s.itemRepo.DeleteItemTx(ctx, tx, item.ID); err != nil {
			return nil, err
		}
		order.RemoveItem(idx)

		// заказ без позиций не храним
		if len(order.Items) == 0 {
			if err := s.orderRepo.DeleteOrderTx(ctx, tx, order.ID); err != nil {
				return nil, err
			}
			return &EditResult{Outcome: OutcomeOrderDeleted, OrderID: order.ID, TotalPrice: decimal.Zero}, nil
		}
		outcome = OutcomeItemRemoved

	default:
		if err := s.itemRepo.UpdateItemQuantityTx(ctx, tx, item.ID, in.Quantity); err != nil {
			return nil, err
		}
		item.Quantity = in.Quantity
		outcome = OutcomeQuantityUpdated
	}

	return s.saveTotal(ctx, tx, order, outcome)
}

func (s *CartService) saveTotal(ctx context.Context, tx *sql.Tx, order *models.Order, outcome Outcome) (*EditResult, error) {
	total := order.RecalculateTotal()
	if err := s.orderRepo.UpdateOrderTotalTx(ctx, tx, order.ID, total); err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}
	return &EditResult{Outcome: outcome, OrderID: order.ID, TotalPrice: total}, nil
}

// SendOrders - оформление всей корзины одной транзакцией.
// Если передан currentAddress, он должен совпадать с одним из сохранённых адресов и становится последним.
func (s *CartService) SendOrders(ctx context.Context, userID int64, currentAddress string) (int, error) {
	const op = "service.CartService.SendOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	unlock := s.locks.Lock(userID)
	defer unlock()

	var sent int64
	err := s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.userRepo.LockUserByIDTx(ctx, tx, userID); err != nil {
			return err
		}

		cart, err := s.orderRepo.GetCartTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(cart) == 0 {
			return ValidationError("nothing to send")
		}

		locations, err := s.locRepo.GetLocationsTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load locations: %w", err)
		}

		address := ""
		if strings.TrimSpace(currentAddress) != "" {
			loc := findLocation(locations, currentAddress)
			if loc == nil {
				return ValidationError("current address is not one of the saved locations")
			}
			if err := s.locRepo.SetLastLocationTx(ctx, tx, userID, loc.ID); err != nil {
				return err
			}
			address = loc.Address
		} else if last := lastLocation(locations); last != nil {
			address = last.Address
		}

		sent, err = s.orderRepo.MarkCartSentTx(ctx, tx, userID, address, s.now())
		if err != nil {
			return fmt.Errorf("failed to mark orders as sent: %w", err)
		}
		return nil
	})
	if err != nil {
		err = fromStorage(err)
		var svcErr *Error
		if errors.As(err, &svcErr) {
			logger.Warn("checkout rejected", slog.Any("error", err))
		} else {
			logger.Error("checkout failed", slog.Any("error", err))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("orders sent", slog.Int64("count", sent))
	return int(sent), nil
}

// GetCart возвращает неотправленные заказы, новые первыми
func (s *CartService) GetCart(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.CartService.GetCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID, false)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}
	if err := attachItems(ctx, s.itemRepo, orders); err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return orders, nil
}

func findLocation(locations []*models.Location, address string) *models.Location {
	address = strings.TrimSpace(address)
	for _, loc := range locations {
		if strings.EqualFold(strings.TrimSpace(loc.Address), address) {
			return loc
		}
	}
	return nil
}

func lastLocation(locations []*models.Location) *models.Location {
	for _, loc := range locations {
		if loc.IsLast {
			return loc
		}
	}
	return nil
}
