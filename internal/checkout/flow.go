package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/blobstore"
	"storefront/internal/cart"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

// CartReader is the part of the cart the guards look at.
type CartReader interface {
	Snapshot() cart.Snapshot
}

// Flow is the linear checkout state machine:
// cart -> summary -> address -> confirm -> submitted | failed.
type Flow struct {
	mu      sync.Mutex
	cart    CartReader
	blobs   blobstore.Store
	step    Step
	failure error
}

func NewFlow(c CartReader, blobs blobstore.Store) *Flow {
	return &Flow{cart: c, blobs: blobs, step: StepCart}
}

func (f *Flow) Current() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Failure returns the error recorded by MarkFailed, if the flow is in StepFailed.
func (f *Flow) Failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepFailed {
		return nil
	}
	return f.failure
}

// Enter moves the flow to step when its guard passes, or to the guard's
// redirect target otherwise. Forward moves may only advance one step.
func (f *Flow) Enter(ctx context.Context, step Step) (Decision, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Checkout"),
		zap.String("method", "Enter"),
		zap.String("step", string(step)),
	)

	rank, ok := stepRank[step]
	if !ok {
		return Decision{}, ErrUnknownStep
	}
	if step == StepSubmitted || step == StepFailed {
		return Decision{}, ErrInvalidStep
	}

	current := f.Current()
	if rank > stepRank[current]+1 {
		log.Warn("refusing to skip checkout steps", zap.String("from", string(current)))
		return Decision{}, fmt.Errorf("%w: %s to %s", ErrStepSkipped, current, step)
	}

	d := f.guard(ctx, step)
	if !d.Allowed {
		log.Info("checkout guard redirected", zap.String("redirect", string(d.Step)))
	}

	f.mu.Lock()
	f.step = d.Step
	f.failure = nil
	f.mu.Unlock()

	return d, nil
}

// Guard evaluates the precondition of step without moving the flow.
func (f *Flow) Guard(ctx context.Context, step Step) Decision {
	return f.guard(ctx, step)
}

func (f *Flow) guard(ctx context.Context, step Step) Decision {
	allow := Decision{Requested: step, Step: step, Allowed: true}

	if step == StepCart {
		return allow
	}

	if f.cart.Snapshot().IsEmpty() {
		return Decision{
			Requested: step,
			Step:      StepCart,
			Notice:    &Notice{Severity: SeverityWarning, Message: "Your cart is empty"},
		}
	}

	if step != StepConfirm {
		return allow
	}

	addr, err := f.Address(ctx)

	var decodeErr *blobstore.DecodeError
	switch {
	case errors.Is(err, ErrAddressMissing):
		return Decision{
			Requested: step,
			Step:      StepAddress,
			Notice:    &Notice{Severity: SeverityWarning, Message: "Please provide a shipping address"},
		}
	case errors.As(err, &decodeErr):
		return Decision{
			Requested: step,
			Step:      StepAddress,
			Notice:    &Notice{Severity: SeverityError, Message: "Saved shipping address is unreadable, please enter it again"},
		}
	case err != nil:
		return Decision{
			Requested: step,
			Step:      StepAddress,
			Notice:    &Notice{Severity: SeverityError, Message: "Could not load the shipping address"},
		}
	}

	if missing := addr.MissingFields(); len(missing) > 0 {
		return Decision{
			Requested: step,
			Step:      StepAddress,
			Missing:   missing,
			Notice: &Notice{
				Severity: SeverityWarning,
				Message:  "Please complete the shipping address: " + strings.Join(missing, ", "),
			},
		}
	}

	return allow
}

// MarkSubmitted ends the flow after the order was accepted.
func (f *Flow) MarkSubmitted() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepConfirm {
		return ErrNotAtConfirm
	}
	f.step = StepSubmitted
	f.failure = nil
	return nil
}

// MarkFailed records a failed submission. The shopper may re-enter Confirm to retry.
func (f *Flow) MarkFailed(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepConfirm {
		return ErrNotAtConfirm
	}
	f.step = StepFailed
	f.failure = err
	return nil
}

// Reset returns the flow to the cart page.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepCart
	f.failure = nil
}

// SaveAddress validates addr and stores it as the checkout address.
func (f *Flow) SaveAddress(ctx context.Context, addr Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	if err := blobstore.SetJSON(ctx, f.blobs, blobstore.KeyCheckoutAddress, addr); err != nil {
		logger.FromCtx(ctx).Warn("failed to store checkout address", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedSaveAddress, err)
	}
	return nil
}

// Address reads the stored checkout address. A malformed blob yields a
// *blobstore.DecodeError.
func (f *Flow) Address(ctx context.Context) (Address, error) {
	var addr Address
	err := blobstore.GetJSON(ctx, f.blobs, blobstore.KeyCheckoutAddress, &addr)
	if errors.Is(err, blobstore.ErrNotFound) {
		return Address{}, ErrAddressMissing
	}
	return addr, err
}

func (f *Flow) ClearAddress(ctx context.Context) error {
	return f.blobs.Delete(ctx, blobstore.KeyCheckoutAddress)
}
