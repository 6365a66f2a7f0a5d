package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/omnilaze/internal/middleware"
	"github.com/example/omnilaze/internal/services"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders  *services.OrderService
	timeout time.Duration
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService, timeout time.Duration) *OrderHandler {
	return &OrderHandler{orders: orders, timeout: timeout}
}

// budgetAmount accepts the budget either as a JSON number or a numeric
// string. Anything unparseable decodes to zero and fails validation later.
type budgetAmount float64

func (b *budgetAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = 0
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		*b = 0
		return nil
	}
	*b = budgetAmount(v)
	return nil
}

type orderFormRequest struct {
	Address     string       `json:"address"`
	Budget      budgetAmount `json:"budget"`
	Allergies   []string     `json:"allergies"`
	Preferences []string     `json:"preferences"`
}

type createOrderRequest struct {
	UserID   string           `json:"user_id"`
	Phone    string           `json:"phone_number"`
	FormData orderFormRequest `json:"form_data"`
}

// CreateOrder stores a draft order from the questionnaire answers.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user information is required")
	}

	userID, err := parseID(req.UserID, "user id")
	if err != nil {
		return err
	}
	if err := middleware.RequireOwner(c, userID); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	order, err := h.orders.Create(ctx, userID, req.Phone, services.OrderForm{
		Address:     req.FormData.Address,
		Budget:      float64(req.FormData.Budget),
		Allergies:   req.FormData.Allergies,
		Preferences: req.FormData.Preferences,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "order created",
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
}

type orderIDRequest struct {
	OrderID string `json:"order_id"`
}

// SubmitOrder moves a draft order to submitted.
func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req orderIDRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	orderID, err := parseID(req.OrderID, "order id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.requireOrderOwner(ctx, c, orderID); err != nil {
		return err
	}

	order, err := h.orders.Submit(ctx, orderID)
	if err != nil {
		return orderError(err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "order submitted",
		"order_number": order.OrderNumber,
	})
}

type feedbackRequest struct {
	OrderID  string `json:"order_id"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// OrderFeedback attaches a rating and comment to an order.
func (h *OrderHandler) OrderFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	orderID, err := parseID(req.OrderID, "order id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	// Rating is checked before the order is looked up.
	if !services.ValidRating(req.Rating) {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}
	if err := h.requireOrderOwner(ctx, c, orderID); err != nil {
		return err
	}

	if err := h.orders.RecordFeedback(ctx, orderID, req.Rating, req.Feedback); err != nil {
		return orderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "feedback submitted",
	})
}

// ListOrders returns the user's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("user_id"), "user id")
	if err != nil {
		return err
	}
	if err := middleware.RequireOwner(c, userID); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	orders, err := h.orders.List(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

type deleteOrderRequest struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// DeleteOrder hides an order from its owner's list.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	var req deleteOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	orderID, err := parseID(req.OrderID, "order id")
	if err != nil {
		return err
	}
	userID, err := parseID(req.UserID, "user id")
	if err != nil {
		return err
	}
	if err := middleware.RequireOwner(c, userID); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.orders.Delete(ctx, orderID, userID); err != nil {
		return orderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order deleted",
	})
}

// requireOrderOwner rejects authenticated requests for another user's
// order. Anonymous requests are not checked.
func (h *OrderHandler) requireOrderOwner(ctx context.Context, c *fiber.Ctx, orderID uuid.UUID) error {
	if _, ok := middleware.GetCurrentUserID(c); !ok {
		return nil
	}
	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return orderError(err)
	}
	return middleware.RequireOwner(c, order.UserID)
}

func parseID(raw, field string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, field+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+field)
	}
	return id, nil
}

// orderError gives not-found a message naming the order.
func orderError(err error) error {
	if status, _ := classify(err); status == fiber.StatusNotFound {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	return err
}
