package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	accounts "vendfleet/internal/accounts/domain"
	inventory "vendfleet/internal/inventory/domain"
	"vendfleet/internal/observability/metrics"
)

func isAccountMissing(err error) bool {
	return errors.Is(err, accounts.ErrAccountNotFound)
}

// PurchaseService orchestrates purchases and their compensating voids.
type PurchaseService struct {
	store  Store
	ledger *Ledger
	clock  Clock
}

// PurchaseServiceOption customizes the service.
type PurchaseServiceOption func(*PurchaseService)

// WithPurchaseClock assigns a clock.
func WithPurchaseClock(clock Clock) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPurchaseService constructs a purchase service.
func NewPurchaseService(store Store, ledger *Ledger, opts ...PurchaseServiceOption) (*PurchaseService, error) {
	if store == nil {
		return nil, errors.New("purchase service: nil store")
	}
	if ledger == nil {
		return nil, errors.New("purchase service: nil ledger")
	}
	service := &PurchaseService{store: store, ledger: ledger, clock: SystemClock{}}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Purchase sells one unit of product from machine to user. The whole
// operation is one atomic unit: validation failures abort before any
// mutation, and a failure after the debit rolls the debit back too.
func (s *PurchaseService) Purchase(ctx context.Context, userID, machineID, productID string) (*inventory.Transaction, error) {
	var created *inventory.Transaction
	err := s.store.InTx(ctx, func(tx Tx) error {
		product, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		machine, err := tx.MachineByID(ctx, machineID)
		if err != nil {
			return err
		}
		account, err := tx.AccountForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		entry, err := tx.StockEntryForUpdate(ctx, machine.ID, product.ID)
		if err != nil {
			return err
		}
		if entry.CurrentStock <= 0 {
			return inventory.ErrInsufficientStock
		}
		if account.Balance.Cmp(product.SellPrice) < 0 {
			return inventory.ErrInsufficientBalance
		}
		if err := tx.SetAccountBalance(ctx, account.ID, account.Balance.Sub(product.SellPrice)); err != nil {
			return err
		}
		if _, err := s.ledger.Decrement(ctx, tx, machine.ID, product); err != nil {
			return err
		}
		transaction := &inventory.Transaction{
			ID:        uuid.NewString(),
			UserID:    account.ID,
			MachineID: machine.ID,
			ProductID: product.ID,
			Amount:    product.SellPrice,
			CostPrice: product.CostPrice,
			CreatedAt: s.clock.Now(),
		}
		if err := tx.InsertTransaction(ctx, transaction); err != nil {
			return err
		}
		created = transaction
		return nil
	})
	if err != nil {
		metrics.IncPurchase("rejected")
		return nil, err
	}
	metrics.IncPurchase("success")
	return created, nil
}

// Void compensates a purchase: the amount is credited back, one unit of
// stock is restored (clamped, no alerts), and the record is removed. If the
// account or stock entry has since been deleted the corresponding step is a
// no-op rather than a failure.
func (s *PurchaseService) Void(ctx context.Context, transactionID string) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		transaction, err := tx.TransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		account, err := tx.AccountForUpdate(ctx, transaction.UserID)
		if err == nil {
			if err := tx.SetAccountBalance(ctx, account.ID, account.Balance.Add(transaction.Amount)); err != nil {
				return err
			}
		} else if !isAccountMissing(err) {
			return err
		}
		if err := s.ledger.ReverseDecrement(ctx, tx, transaction.MachineID, transaction.ProductID); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, transaction.ID)
	})
	if err != nil {
		metrics.IncVoid("transaction", "rejected")
		return err
	}
	metrics.IncVoid("transaction", "success")
	return nil
}
