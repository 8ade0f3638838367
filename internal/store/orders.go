package store

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
)

func reduceOrders(s OrderState, a Action) OrderState {
	switch a := a.(type) {
	case Logout, ClearOrders:
		return OrderState{Call: s.Call}
	case asyncAction:
		m := a.meta()
		switch m.Op {
		case OpFetchOrders:
			s.Call = s.Call.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				orders, ok := payload[[]domain.Order](a)
				if !ok {
					log.Error().Str("action", a.Type()).Msg("unexpected payload type")
					break
				}
				s.Orders, s.Error = reconcileOrders(s.Orders, orders)
			case Rejected:
				s.Error = m.Error
			}
		case OpCreateOrder, OpUpdateOrder:
			s.Call = s.Call.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				rec, ok := payload[domain.OrderRecord](a)
				if !ok {
					log.Error().Str("action", a.Type()).Msg("unexpected payload type")
					break
				}
				s.Orders, s.Error = mergeOrder(s.Orders, rec)
			case Rejected:
				s.Error = m.Error
			}
		}
	}
	return s
}

// checkOrder tells whether rec may replace prev, the cached record with the same id, if there is one.
func checkOrder(prev *domain.OrderRecord, rec domain.OrderRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if prev != nil && !prev.Status.Reaches(rec.Status) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, prev.Status, rec.Status)
	}
	return nil
}

func orderError(errs []error) *SerializedError {
	if len(errs) == 0 {
		return nil
	}
	return &SerializedError{Name: InvalidStateError, Message: errors.Join(errs...).Error()}
}

// reconcileOrders replaces the cached orders with the fetched ones. A fetched record that breaks the order
// lifecycle is not stored: the cached record with the same id, if any, stays in its place and the violation is
// returned as an InvalidStateError.
func reconcileOrders(cached, fetched []domain.Order) ([]domain.Order, *SerializedError) {
	prev := make(map[string]domain.OrderRecord, len(cached))
	for _, o := range cached {
		prev[o.Order.ID] = o.Order
	}

	orders := make([]domain.Order, 0, len(fetched))
	var errs []error
	for _, o := range fetched {
		var p *domain.OrderRecord
		if rec, ok := prev[o.Order.ID]; ok {
			p = &rec
		}
		if err := checkOrder(p, o.Order); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", o.Order.ID, err))
			if p != nil {
				o.Order = *p
				orders = append(orders, o)
			}
			continue
		}
		orders = append(orders, o)
	}
	return orders, orderError(errs)
}

// mergeOrder returns a copy of orders in which rec replaces the record with the same id. A record that is not
// cached yet is appended, unless the orders were never loaded. A record that breaks the order lifecycle leaves
// orders unchanged and is returned as an InvalidStateError.
func mergeOrder(orders []domain.Order, rec domain.OrderRecord) ([]domain.Order, *SerializedError) {
	i := slices.IndexFunc(orders, func(o domain.Order) bool {
		return o.Order.ID == rec.ID
	})
	var prev *domain.OrderRecord
	if i >= 0 {
		prev = &orders[i].Order
	}
	if err := checkOrder(prev, rec); err != nil {
		return orders, orderError([]error{fmt.Errorf("order %s: %w", rec.ID, err)})
	}
	if orders == nil {
		return nil, nil
	}

	merged := make([]domain.Order, len(orders), len(orders)+1)
	copy(merged, orders)
	if i >= 0 {
		merged[i].Order = rec
		return merged, nil
	}
	return append(merged, domain.Order{Order: rec}), nil
}

// SelectOrders returns the cached orders, nil when they were never loaded.
func SelectOrders(s RootState) []domain.Order {
	return s.Orders.Orders
}
