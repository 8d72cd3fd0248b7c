package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/retailkit/pos/internal/catalog"
	kafkax "github.com/retailkit/pos/internal/kafka"
	"github.com/retailkit/pos/internal/redisx"
	"github.com/retailkit/pos/internal/sale"
)

type OrderStore interface {
	Commit(ctx context.Context, o *sale.Order) (int64, error)
	Order(ctx context.Context, id int64) (sale.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]sale.Order, error)
}

type ProductStore interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

// SaleHandler drives the cart aggregate. One cart exists per operator; the
// mutex serializes cart access the way the original's single event thread
// did. Redis and Producer may be nil, which disables the reprint cache and
// the finalized-sale event stream.
type SaleHandler struct {
	Catalog  ProductStore
	Orders   OrderStore
	Redis    *redis.Client
	Producer *kafkax.Producer
	Policy   sale.TaxPolicy
	Service  string
	Now      func() time.Time

	mu    sync.Mutex
	carts map[int64]*sale.Cart
}

type cartView struct {
	OperatorID int64            `json:"operator_id"`
	OpenedAt   time.Time        `json:"opened_at"`
	Lines      []sale.OrderLine `json:"lines"`
	Totals     sale.Totals      `json:"totals"`
}

type addItemReq struct {
	ProductID int64 `json:"product_id"`
}

type checkoutReq struct {
	AmountPaid string `json:"amount_paid"`
}

type checkoutRejected struct {
	Error string          `json:"error"`
	Total decimal.Decimal `json:"total"`
}

func (h *SaleHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart", h.startNew)
	r.Post("/cart/items", h.addItem)
	r.Post("/cart/items/{productID}/increase", h.lineOp((*sale.Cart).Increase))
	r.Post("/cart/items/{productID}/decrease", h.lineOp((*sale.Cart).Decrease))
	r.Delete("/cart/items/{productID}", h.lineOp((*sale.Cart).Remove))
	r.Post("/cart/checkout", h.checkout)
	r.Get("/orders/recent", h.recentOrders)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *SaleHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// cart returns the operator's open cart, creating one on first use. Callers
// must hold h.mu.
func (h *SaleHandler) cart(operatorID int64) *sale.Cart {
	if h.carts == nil {
		h.carts = make(map[int64]*sale.Cart)
	}
	c, ok := h.carts[operatorID]
	if !ok {
		c = sale.NewCart(operatorID, h.Policy, h.now())
		h.carts[operatorID] = c
	}
	return c
}

func snapshot(c *sale.Cart) cartView {
	return cartView{
		OperatorID: c.OperatorID,
		OpenedAt:   c.OpenedAt,
		Lines:      c.Lines(),
		Totals:     c.Totals(),
	}
}

func (h *SaleHandler) getCart(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	h.mu.Lock()
	view := snapshot(h.cart(claims.OperatorID))
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

// startNew discards any in-progress sale and opens a fresh cart.
func (h *SaleHandler) startNew(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	h.mu.Lock()
	if h.carts == nil {
		h.carts = make(map[int64]*sale.Cart)
	}
	c := sale.NewCart(claims.OperatorID, h.Policy, h.now())
	h.carts[claims.OperatorID] = c
	view := snapshot(c)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

func (h *SaleHandler) addItem(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Product(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.mu.Lock()
	c := h.cart(claims.OperatorID)
	c.Add(p)
	view := snapshot(c)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

// lineOp wraps the mutations that address an existing line by product id.
func (h *SaleHandler) lineOp(op func(*sale.Cart, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())

		productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		h.mu.Lock()
		c := h.cart(claims.OperatorID)
		op(c, productID)
		view := snapshot(c)
		h.mu.Unlock()

		writeJSON(w, http.StatusOK, view)
	}
}

// checkout validates payment, commits the order atomically and resets the
// cart. A commit failure keeps the cart open so the operator can retry.
func (h *SaleHandler) checkout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cart(claims.OperatorID)
	if c.Empty() {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	total := c.Totals().Total
	payment := sale.ValidatePayment(req.AmountPaid, total)
	if !payment.Accepted {
		writeJSON(w, http.StatusBadRequest, checkoutRejected{
			Error: "amount paid must be a valid amount covering the total",
			Total: total,
		})
		return
	}

	order := c.Finalize(payment)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Orders.Commit(ctx, &order); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	delete(h.carts, claims.OperatorID)

	h.cacheReceipt(ctx, order)
	h.publishFinalized(order)

	writeJSON(w, http.StatusCreated, order)
}

func (h *SaleHandler) cacheReceipt(ctx context.Context, o sale.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyReceipt, o.ID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLReceipt).Err()
}

func (h *SaleHandler) publishFinalized(o sale.Order) {
	if h.Producer == nil {
		return
	}
	ev := sale.Envelope{
		EventID:       uuid.NewString(),
		EventType:     sale.EventSaleFinalized,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload: kafkax.MustMarshal(sale.SaleFinalizedPayload{
			OrderID:    o.ID,
			OperatorID: o.OperatorID,
			Total:      o.Total,
			Paid:       o.Paid,
			Change:     o.Change,
			LineCount:  len(o.Lines),
		}),
	}
	h.Producer.Publish(sale.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(sale.EventSaleFinalized)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *SaleHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyReceipt, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	o, err := h.Orders.Order(ctx, id)
	if errors.Is(err, sale.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(o); err == nil {
			_ = h.Redis.Set(ctx, key, b, redisx.TTLReceipt).Err()
		}
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *SaleHandler) recentOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Orders.RecentOrders(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
