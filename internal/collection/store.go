// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package collection

import "context"

// Repository is the storage contract for the collection.
//
// List returns records in insertion order. Every implementation returns
// copies — callers never share memory with stored state.
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Insert(ctx context.Context, record Record) error
	Update(ctx context.Context, record Record) error
	Delete(ctx context.Context, id string) error
}
