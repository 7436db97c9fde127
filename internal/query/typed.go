package query

import (
	"context"
	"fmt"
)

// Get is Fetch with a typed fetcher and result.
func Get[T any](ctx context.Context, client *Client, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, err := client.Fetch(ctx, key, Erase(fetch))
	if err != nil {
		return zero, err
	}

	return Cast[T](data)
}

// Erase adapts a typed fetch function to a Fetcher.
func Erase[T any](fetch func(ctx context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

// Cast converts cached data back to its type. Data of another type is an error
// and never a panic.
func Cast[T any](data any) (T, error) {
	var zero T
	if data == nil {
		return zero, nil
	}

	typed, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("cached value has type %T, want %T", data, zero)
	}
	return typed, nil
}
