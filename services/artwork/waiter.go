package artwork

// Waiter identifies a caller awaiting artwork.
// The resolver never inspects a Waiter beyond Valid; it only hands it back through ResolvedFunc.
type Waiter interface {
	// Valid reports whether the caller still wants the result
	Valid() bool
}

// ResolvedFunc receives an artwork URL for a waiter. It is only called on success,
// possibly from a lookup goroutine.
type ResolvedFunc func(w Waiter, artworkURL string)

// WaiterFunc adapts a liveness predicate to the Waiter interface
type WaiterFunc func() bool

// Valid calls f
func (f WaiterFunc) Valid() bool {
	return f()
}
