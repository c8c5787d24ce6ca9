package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

const maxOrderBodyBytes = 1 << 20

type OrderHandler struct {
	orderService port.OrderService
}

func NewOrderHandler(
	orderService port.OrderService,
) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder handles PUT /v1/order/{id}
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	// A malformed id wins over a malformed body
	if err := domain.ValidateOrderID(orderID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var draft domain.OrderDraft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBodyBytes))
	if err := dec.Decode(&draft); err != nil && !errors.Is(err, io.EOF) {
		writeDomainError(w, r, errInvalidBody)
		return
	}

	if err := h.orderService.CreateOrder(r.Context(), orderID, draft); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, MessageResponse{Message: "Order created successfully"})
}

// GetOrder handles GET /v1/order/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
}
