package render

import (
	"context"
	"reflect"
)

// JobKey identifies the active job inside a context.
var JobKey = KeyOf[*Job]()

// TileKey identifies the tile being rendered inside a context.
var TileKey = KeyOf[*Tile]()

// KeyOf returns the reflect.Type of the provided type, used as context key.
func KeyOf[T any]() reflect.Type {
	var a T
	return reflect.TypeOf(a)
}

// ContextValue returns the value of the provided type from the context, or
// the zero value when absent.
func ContextValue[T any](ctx context.Context) T {
	key := KeyOf[T]()
	if value := ctx.Value(key); value != nil {
		return value.(T)
	}
	var t T
	return t
}
