package sequencer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength is returned when a sequencer is built with no steps.
	ErrInvalidLength = errors.New("sequencer: length must be positive")
	// ErrIndexOutOfRange is returned for step indices outside [0, Len()).
	ErrIndexOutOfRange = errors.New("sequencer: index out of range")
)

// Settable is implemented by step values that accept a raw write.
// *param.Parameter and the param views satisfy it.
type Settable interface {
	SetValue(float64)
}

// Sequencer is a fixed-length circular lane of step values.
// It is not safe for concurrent use.
type Sequencer[T Settable] struct {
	values []T
	index  int
}

// New allocates steps values, each from its own call to init.
func New[T Settable](steps int, init func() T) (*Sequencer[T], error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, steps)
	}
	values := make([]T, steps)
	for i := range values {
		values[i] = init()
	}
	return &Sequencer[T]{values: values}, nil
}

// Values returns the steps in order. The slice is shared with the sequencer.
func (s *Sequencer[T]) Values() []T { return s.values }

func (s *Sequencer[T]) Len() int { return len(s.values) }

// Index returns the position of the current step.
func (s *Sequencer[T]) Index() int { return s.index }

// Current returns the value at the current index without advancing.
func (s *Sequencer[T]) Current() T { return s.values[s.index] }

// Next advances the index by one step, wrapping at the end.
func (s *Sequencer[T]) Next() {
	s.index = (s.index + 1) % len(s.values)
}

// Step returns the current value and then advances.
func (s *Sequencer[T]) Step() T {
	current := s.Current()
	s.Next()
	return current
}

// At returns the value at index.
func (s *Sequencer[T]) At(index int) (T, error) {
	if index < 0 || index >= len(s.values) {
		var zero T
		return zero, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.values))
	}
	return s.values[index], nil
}

// Set writes value into the step at index.
func (s *Sequencer[T]) Set(value float64, index int) error {
	v, err := s.At(index)
	if err != nil {
		return err
	}
	v.SetValue(value)
	return nil
}

// Reset moves the index back to the first step.
func (s *Sequencer[T]) Reset() {
	s.index = 0
}
