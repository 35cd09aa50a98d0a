package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/smallbiznis/bukukas/internal/payment/domain"
)

// Registry tries payload adapters in the order they were registered.
type Registry struct {
	adapters []domain.PayloadAdapter
}

func NewRegistry(adapters ...domain.PayloadAdapter) *Registry {
	registry := &Registry{}
	seen := map[domain.Shape]struct{}{}
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		name := adapter.Name()
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		registry.adapters = append(registry.adapters, adapter)
	}
	return registry
}

// Names lists registered shapes in priority order.
func (r *Registry) Names() []domain.Shape {
	if r == nil {
		return nil
	}
	names := make([]domain.Shape, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		names = append(names, adapter.Name())
	}
	return names
}

// Interpret decodes the callback and hands it to the first adapter that
// recognises it.
func (r *Registry) Interpret(payload []byte) (*domain.PaymentEvent, error) {
	if r == nil || len(r.adapters) == 0 {
		return nil, fmt.Errorf("%w: no payload adapters registered", domain.ErrMalformedPayload)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: invalid json", domain.ErrMalformedPayload)
	}

	var env domain.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	env.Raw = payload

	for _, adapter := range r.adapters {
		if !adapter.Match(&env) {
			continue
		}
		event, err := adapter.Interpret(&env)
		if err != nil {
			return nil, err
		}
		event.Shape = adapter.Name()
		event.RawPayload = payload
		return event, nil
	}
	return nil, fmt.Errorf("%w: no invoice reference in description or external_id", domain.ErrMalformedPayload)
}
