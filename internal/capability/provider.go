package capability

import "context"

// FuncProvider adapts plain functions to the Provider interface. A nil
// ReadyFn means always ready.
type FuncProvider struct {
	ProviderName string
	ReadyFn      func() bool
	ExecuteFn    func(ctx context.Context, input any) (any, error)
}

// Name implements Provider.
func (f *FuncProvider) Name() string { return f.ProviderName }

// Ready implements Provider.
func (f *FuncProvider) Ready() bool {
	if f.ReadyFn == nil {
		return true
	}
	return f.ReadyFn()
}

// Execute implements Provider.
func (f *FuncProvider) Execute(ctx context.Context, input any) (any, error) {
	return f.ExecuteFn(ctx, input)
}
