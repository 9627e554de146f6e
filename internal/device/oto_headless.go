//go:build headless

package device

// Oto is unavailable in headless builds.
type Oto struct{}

// NewOto returns an output that never starts.
func NewOto(int) *Oto { return &Oto{} }

// Name implements the engine output contract.
func (o *Oto) Name() string { return "oto" }

// Start always fails with ErrUnavailable.
func (o *Oto) Start(func([]float32)) error { return ErrUnavailable }

// Close is a no-op.
func (o *Oto) Close() error { return nil }
