// Package http exposes order commands and queries over the JSON API described
// in api/openapi.yaml. Routing, parameter binding and wire types come from the
// generated servers package; this package maps them onto the use cases.
// Callers are authenticated upstream; the acting user arrives in the X-Actor-ID header.
package http

import (
	"log/slog"
	"net/http"

	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/application/usecases/queries"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

// ActorHeader carries the id of the authenticated user performing a write.
const ActorHeader = "X-Actor-ID"

var _ servers.ServerInterface = (*Server)(nil)

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler    commands.CreateOrderCommandHandler
	appendSnapshotHandler commands.AppendSnapshotCommandHandler

	// Query handlers
	getLatestSnapshotHandler queries.GetLatestSnapshotQueryHandler
	getSnapshotAtHandler     queries.GetSnapshotAtQueryHandler
	getOrderHistoryHandler   queries.GetOrderHistoryQueryHandler
	getOpenOrdersHandler     queries.GetOpenOrdersQueryHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	appendSnapshotHandler commands.AppendSnapshotCommandHandler,
	getLatestSnapshotHandler queries.GetLatestSnapshotQueryHandler,
	getSnapshotAtHandler queries.GetSnapshotAtQueryHandler,
	getOrderHistoryHandler queries.GetOrderHistoryQueryHandler,
	getOpenOrdersHandler queries.GetOpenOrdersQueryHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		appendSnapshotHandler:    appendSnapshotHandler,
		getLatestSnapshotHandler: getLatestSnapshotHandler,
		getSnapshotAtHandler:     getSnapshotAtHandler,
		getOrderHistoryHandler:   getOrderHistoryHandler,
		getOpenOrdersHandler:     getOpenOrdersHandler,
		logger:                   logger.With("component", "http"),
	}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context, params servers.CreateOrderParams) error {
	actor, err := toKernelUUID(ActorHeader, params.XActorID)
	if err != nil {
		return s.writeError(c, err)
	}

	var req servers.CreateOrderJSONRequestBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	kind, err := order.ParseKind(string(req.Kind))
	if err != nil {
		return s.writeError(c, err)
	}
	counterpartyID, err := toKernelUUID("counterpartyId", req.CounterpartyId)
	if err != nil {
		return s.writeError(c, err)
	}
	parts, err := toPartLines(req.Parts)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kind, counterpartyID, actor, parts, deref(req.AdditionalInfo))
	if err != nil {
		return s.writeError(c, err)
	}

	identity, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fromOrderSummary(queries.NewOrderSummaryResponse(identity)))
}

// AppendSnapshot handles POST /api/v1/orders/{id}/snapshots.
func (s *Server) AppendSnapshot(c echo.Context, id servers.OrderId, params servers.AppendSnapshotParams) error {
	actor, err := toKernelUUID(ActorHeader, params.XActorID)
	if err != nil {
		return s.writeError(c, err)
	}
	orderID, err := toKernelUUID("id", id)
	if err != nil {
		return s.writeError(c, err)
	}

	var req servers.AppendSnapshotJSONRequestBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	status, err := order.ParseStatus(string(req.Status))
	if err != nil {
		return s.writeError(c, err)
	}
	parts, err := toPartLines(req.Parts)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewAppendSnapshotCommand(orderID, actor, status, parts, deref(req.AdditionalInfo))
	if err != nil {
		return s.writeError(c, err)
	}

	snapshot, err := s.appendSnapshotHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fromSnapshot(queries.NewSnapshotResponse(snapshot)))
}

// GetLatestSnapshot handles GET /api/v1/orders/{id}/snapshots/latest.
func (s *Server) GetLatestSnapshot(c echo.Context, id servers.OrderId) error {
	orderID, err := toKernelUUID("id", id)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetLatestSnapshotQuery(orderID)
	if err != nil {
		return s.writeError(c, err)
	}

	snapshot, err := s.getLatestSnapshotHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, fromSnapshot(snapshot))
}

// GetSnapshotAt handles GET /api/v1/orders/{id}/snapshots/{index}.
func (s *Server) GetSnapshotAt(c echo.Context, id servers.OrderId, index int) error {
	orderID, err := toKernelUUID("id", id)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetSnapshotAtQuery(orderID, index)
	if err != nil {
		return s.writeError(c, err)
	}

	snapshot, err := s.getSnapshotAtHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, fromSnapshot(snapshot))
}

// GetOrderHistory handles GET /api/v1/orders/{id}/history.
func (s *Server) GetOrderHistory(c echo.Context, id servers.OrderId) error {
	orderID, err := toKernelUUID("id", id)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetOrderHistoryQuery(orderID)
	if err != nil {
		return s.writeError(c, err)
	}

	history, err := s.getOrderHistoryHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, fromHistory(history))
}

// GetOpenOrders handles GET /api/v1/orders/open?kind=SALES.
func (s *Server) GetOpenOrders(c echo.Context, params servers.GetOpenOrdersParams) error {
	kind, err := order.ParseKind(string(params.Kind))
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetOpenOrdersQuery(kind)
	if err != nil {
		return s.writeError(c, err)
	}

	orders, err := s.getOpenOrdersHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]servers.Order, 0, len(orders))
	for _, o := range orders {
		response = append(response, fromOrderSummary(o))
	}
	return c.JSON(http.StatusOK, response)
}
