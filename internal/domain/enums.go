package domain

// SKULevel represents a product's position in the 2-deep catalog hierarchy
type SKULevel string

const (
	SKULevelGrandparent SKULevel = "grandparent"
	SKULevelParent      SKULevel = "parent"
	SKULevelChild       SKULevel = "child"
)

// IsValid checks if the SKU level is valid
func (l SKULevel) IsValid() bool {
	switch l {
	case SKULevelGrandparent, SKULevelParent, SKULevelChild:
		return true
	default:
		return false
	}
}

// ParentLevel returns the level a referenced parent product must have.
// A grandparent sits at the top, so ok is false for it.
func (l SKULevel) ParentLevel() (SKULevel, bool) {
	switch l {
	case SKULevelChild:
		return SKULevelParent, true
	case SKULevelParent:
		return SKULevelGrandparent, true
	default:
		return "", false
	}
}

// SyncStatus represents the sync state of an order or product link
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusError   SyncStatus = "error"
)

// IsValid checks if the sync status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSynced, SyncStatusPending, SyncStatusError:
		return true
	default:
		return false
	}
}

// StoreSyncStatus represents the sync state of a connected Shopify store.
// Transitions: idle -> syncing -> {success | error} -> syncing -> ...
type StoreSyncStatus string

const (
	StoreSyncIdle    StoreSyncStatus = "idle"
	StoreSyncRunning StoreSyncStatus = "syncing"
	StoreSyncSuccess StoreSyncStatus = "success"
	StoreSyncError   StoreSyncStatus = "error"
)

// IsValid checks if the store sync status is valid
func (s StoreSyncStatus) IsValid() bool {
	switch s {
	case StoreSyncIdle, StoreSyncRunning, StoreSyncSuccess, StoreSyncError:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a store sync status transition is valid
func (s StoreSyncStatus) CanTransitionTo(next StoreSyncStatus) bool {
	switch s {
	case StoreSyncIdle, StoreSyncSuccess, StoreSyncError:
		return next == StoreSyncRunning
	case StoreSyncRunning:
		return next == StoreSyncSuccess || next == StoreSyncError
	default:
		return false
	}
}

// Derived order statuses. These come from the remote record, never from user input.
const (
	OrderStatusOpen      = "open"
	OrderStatusCancelled = "cancelled"

	FulfillmentFulfilled   = "fulfilled"
	FulfillmentUnfulfilled = "unfulfilled"
)
