package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

var orderSyncMu sync.Mutex

// RunOrderSyncOnce pulls new orders for every active store. Does not block
// the caller's other work; per-store failures are logged and the loop moves
// on to the next store.
func (s *SyncService) RunOrderSyncOnce(ctx context.Context) {
	stores, err := s.repos.Store.ListActive(ctx)
	if err != nil {
		s.logger.Error("Order sync: failed to list active stores", zap.Error(err))
		return
	}
	if len(stores) == 0 {
		s.logger.Debug("Order sync: no active stores")
		return
	}
	for _, store := range stores {
		result, err := s.SyncOrdersFromShopify(ctx, store.ID)
		if err != nil {
			s.logger.Warn("Order sync failed for store",
				zap.String("store_id", store.ID.String()),
				zap.String("domain", store.ShopifyDomain),
				zap.Error(err))
			continue
		}
		if !result.Success {
			s.logger.Warn("Order sync finished with errors",
				zap.String("domain", store.ShopifyDomain),
				zap.Int("synced", result.SyncedOrders),
				zap.Strings("errors", result.Errors))
		}
	}
}

// StartOrderSyncLoop runs an immediate order pull and then repeats on the
// given interval until ctx is cancelled
func (s *SyncService) StartOrderSyncLoop(ctx context.Context, interval time.Duration) {
	orderSyncMu.Lock()
	s.RunOrderSyncOnce(ctx)
	orderSyncMu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			orderSyncMu.Lock()
			s.RunOrderSyncOnce(ctx)
			orderSyncMu.Unlock()
		}
	}
}
