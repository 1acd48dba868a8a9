package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/models"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// WalletService manages per-user balances with an append-only ledger.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// Get returns the caller's wallet, creating it on first access.
func (s *WalletService) Get(userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	result := s.db.Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Currency: "USD"}).
		FirstOrCreate(&wallet)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		s.db.Model(&models.User{}).Where("id = ?", userID).Update("wallet_id", wallet.ID)
	}
	return &wallet, nil
}

// Deposit credits the wallet and records a COMPLETED ledger entry in one
// transaction.
func (s *WalletService) Deposit(userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	transaction := models.Transaction{
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        models.TransactionDeposit,
		Status:      models.TransactionCompleted,
		Description: description,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(wallet).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Withdraw debits the wallet. The debit is a single guarded update with
// the balance check in its WHERE clause, so two concurrent withdrawals
// can never both pass the check and overdraw.
func (s *WalletService) Withdraw(userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	transaction := models.Transaction{
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        models.TransactionWithdrawal,
		Status:      models.TransactionCompleted,
		Description: description,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Wallet{}).
			Where("id = ? AND balance >= ?", wallet.ID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Transactions returns the ledger newest first.
func (s *WalletService) Transactions(userID uuid.UUID, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	wallet, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	err = s.db.Where("wallet_id = ?", wallet.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}
