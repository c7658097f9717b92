package model

import "context"

// Keys of the persisted client state.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyCart         = "cart"
)

// KVStore is the persistent key-value storage shared by the cart and the session.
// Get reports found=false for a missing key. Delete of a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
