package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/pkg/errors"
)

// StoreService manages the lifecycle of connected Shopify stores
type StoreService struct {
	repos   *repository.Repositories
	gateway GatewayFactory
	logger  *zap.Logger
}

// NewStoreService creates a new store service
func NewStoreService(repos *repository.Repositories, gateway GatewayFactory, logger *zap.Logger) *StoreService {
	return &StoreService{
		repos:   repos,
		gateway: gateway,
		logger:  logger,
	}
}

// CreateStore verifies the credentials against the Shopify API before
// persisting. Unreachable stores are rejected, not saved as inactive.
func (s *StoreService) CreateStore(ctx context.Context, req *CreateStoreRequest) (*domain.ShopifyStore, error) {
	store := &domain.ShopifyStore{
		StoreName:     req.StoreName,
		ShopifyDomain: normalizeDomain(req.ShopifyDomain),
		AccessToken:   req.AccessToken,
		APIKey:        req.APIKey,
		APISecret:     req.APISecret,
		WebhookSecret: req.WebhookSecret,
		IsActive:      true,
		SyncStatus:    domain.StoreSyncIdle,
	}

	if !s.gateway(store).TestConnection(ctx) {
		return nil, &errors.ErrConnection{Domain: store.ShopifyDomain}
	}

	if err := s.repos.Store.Create(ctx, store); err != nil {
		return nil, err
	}

	s.logger.Info("Shopify store connected",
		zap.String("store_id", store.ID.String()),
		zap.String("domain", store.ShopifyDomain))
	return store, nil
}

// UpdateStore applies the non-nil fields of req. Changed credentials are
// re-verified before the write.
func (s *StoreService) UpdateStore(ctx context.Context, id uuid.UUID, req *UpdateStoreRequest) (*domain.ShopifyStore, error) {
	store, err := s.repos.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	credentialsChanged := false
	if req.StoreName != nil {
		store.StoreName = *req.StoreName
	}
	if req.ShopifyDomain != nil {
		store.ShopifyDomain = normalizeDomain(*req.ShopifyDomain)
		credentialsChanged = true
	}
	if req.AccessToken != nil {
		store.AccessToken = *req.AccessToken
		credentialsChanged = true
	}
	if req.APIKey != nil {
		store.APIKey = *req.APIKey
	}
	if req.APISecret != nil {
		store.APISecret = *req.APISecret
	}
	if req.WebhookSecret != nil {
		store.WebhookSecret = req.WebhookSecret
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if credentialsChanged && !s.gateway(store).TestConnection(ctx) {
		return nil, &errors.ErrConnection{Domain: store.ShopifyDomain}
	}

	if err := s.repos.Store.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// DeleteStore removes a store. Its orders keep their store id for history.
func (s *StoreService) DeleteStore(ctx context.Context, id uuid.UUID) error {
	return s.repos.Store.Delete(ctx, id)
}

// TestConnection checks whether the store's saved credentials still work
func (s *StoreService) TestConnection(ctx context.Context, id uuid.UUID) (bool, error) {
	store, err := s.repos.Store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return s.gateway(store).TestConnection(ctx), nil
}

// RegisterWebhooks subscribes the store to every order topic on the
// allow-list, pointing at the ingest endpoint under baseURL. Existing
// subscriptions with the same topic and address are left alone.
func (s *StoreService) RegisterWebhooks(ctx context.Context, id uuid.UUID, baseURL string) (*SyncResult, error) {
	store, err := s.repos.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	address := strings.TrimRight(baseURL, "/") + "/webhooks/shopify"
	gw := s.gateway(store)

	registered := 0
	var errs []string
	for _, topic := range WebhookTopics {
		if _, err := gw.EnsureWebhook(ctx, topic, address); err != nil {
			errs = append(errs, fmt.Sprintf("topic %s: %v", topic, err))
			continue
		}
		registered++
	}

	s.logger.Info("Webhook registration finished",
		zap.String("domain", store.ShopifyDomain),
		zap.Int("registered", registered),
		zap.Int("failed", len(errs)))

	return &SyncResult{
		Success: len(errs) == 0,
		Message: fmt.Sprintf("Registered %d of %d webhook topics", registered, len(WebhookTopics)),
		Errors:  errs,
	}, nil
}

func normalizeDomain(d string) string {
	d = strings.TrimSpace(d)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimSuffix(d, "/")
}
