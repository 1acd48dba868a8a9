package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/middleware"
	"github.com/inflowhq/inflow-backend/internal/services"
)

type WalletHandler struct {
	walletService *services.WalletService
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	wallet, err := h.walletService.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(wallet)
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.TransactionRequest
	if !parseBody(c, &req) {
		return nil
	}

	transaction, err := h.walletService.Deposit(userID, req.Amount, req.Description)
	if err != nil {
		return walletError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(transaction)
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.TransactionRequest
	if !parseBody(c, &req) {
		return nil
	}

	transaction, err := h.walletService.Withdraw(userID, req.Amount, req.Description)
	if err != nil {
		return walletError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(transaction)
}

func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	transactions, err := h.walletService.Transactions(userID, c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(transactions)
}

func walletError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrInvalidAmount) || errors.Is(err, services.ErrInsufficientFunds) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
