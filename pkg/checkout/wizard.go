package checkout

import (
	"context"
	"encoding/json"

	"citystore-api-io/api/pkg/cart"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/util"

	"github.com/pkg/errors"
)

type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepSubmitted
)

var stepNames = map[Step]string{
	StepShipping:  "shipping",
	StepPayment:   "payment",
	StepReview:    "review",
	StepSubmitted: "submitted",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for step, n := range stepNames {
		if n == name {
			*s = step
			return nil
		}
	}
	return errors.Errorf("unknown checkout step %q", name)
}

// Submitter records an order. The order service implements it.
type Submitter interface {
	SubmitOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, error)
}

// SubmitError is a failed order submission. The wizard stays on review.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "failed to place order: " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// State is the persisted wizard snapshot.
type State struct {
	Step    Step                `json:"step"`
	Form    models.CheckoutForm `json:"form"`
	Errors  map[string]string   `json:"errors"`
	OrderId string              `json:"orderId,omitempty"`
}

type Options struct {
	StrictCards bool
}

// Wizard walks Shipping, Payment, Review and Submitted one step at a time.
type Wizard struct {
	state State
	opts  Options
}

func New(opts Options) *Wizard {
	return &Wizard{
		state: State{
			Step:   StepShipping,
			Form:   models.NewCheckoutForm(),
			Errors: map[string]string{},
		},
		opts: opts,
	}
}

// Restore resumes a wizard from a snapshot. Out of range steps restart at shipping.
func Restore(state State, opts Options) *Wizard {
	if state.Step < StepShipping || state.Step > StepSubmitted {
		state.Step = StepShipping
	}
	if state.Errors == nil {
		state.Errors = map[string]string{}
	}
	return &Wizard{state: state, opts: opts}
}

func (w *Wizard) State() State {
	s := w.state
	s.Errors = make(map[string]string, len(w.state.Errors))
	for k, v := range w.state.Errors {
		s.Errors[k] = v
	}
	return s
}

func (w *Wizard) Step() Step {
	return w.state.Step
}

func (w *Wizard) Form() models.CheckoutForm {
	return w.state.Form
}

func (w *Wizard) Errors() map[string]string {
	return w.State().Errors
}

// Prefill copies name, contact and address from the signed in user.
func (w *Wizard) Prefill(profile models.UserProfile) {
	w.SetShipping(models.ShippingFromProfile(w.state.Form.Shipping, profile))
}

// SetShipping replaces the shipping fields and clears errors on the ones that changed.
func (w *Wizard) SetShipping(s models.ShippingInfo) {
	w.clearChanged("shipping", fieldValues(w.state.Form.Shipping), fieldValues(s))
	w.state.Form.Shipping = s
}

func (w *Wizard) SetPayment(p models.PaymentInfo) {
	w.clearChanged("payment", fieldValues(w.state.Form.Payment), fieldValues(p))
	w.state.Form.Payment = p
}

func (w *Wizard) SetNotes(notes string) {
	w.state.Form.Notes = notes
}

// Next validates the current step and advances on success. Review only
// advances through PlaceOrder.
func (w *Wizard) Next() error {
	var errs map[string]string

	switch w.state.Step {
	case StepShipping:
		errs = ValidateShipping(w.state.Form.Shipping)
	case StepPayment:
		errs = ValidatePayment(w.state.Form.Payment, w.opts.StrictCards)
	case StepReview:
		return models.NewFieldError("step", "Place the order to finish checkout")
	default:
		return models.NewFieldError("step", "Checkout is already complete")
	}

	w.replaceErrors(errs)
	if len(errs) > 0 {
		return &models.ValidationError{Fields: copyErrors(errs)}
	}
	w.state.Step++
	return nil
}

// Back moves one step back. Shipping and Submitted stay where they are.
func (w *Wizard) Back() {
	if w.state.Step > StepShipping && w.state.Step < StepSubmitted {
		w.state.Step--
	}
}

// PlaceOrder re-checks payment, submits the cart and clears it. On any
// failure the wizard stays on review and the cart is left untouched.
func (w *Wizard) PlaceOrder(ctx context.Context, c *cart.Cart, userID string, submitter Submitter) (*models.Order, error) {
	if w.state.Step != StepReview {
		return nil, models.NewFieldError("step", "Complete shipping and payment first")
	}

	errs := ValidatePayment(w.state.Form.Payment, w.opts.StrictCards)
	if len(errs) > 0 {
		w.replaceErrors(errs)
		return nil, &models.ValidationError{Fields: copyErrors(errs)}
	}
	if c.IsEmpty() {
		return nil, models.NewFieldError("items", "Your cart is empty")
	}

	req := models.OrderRequest{
		Items:    c.Items(),
		Shipping: w.state.Form.Shipping,
		Payment:  models.OrderPayment{Method: w.state.Form.Payment.Method},
		Total:    c.Summary().Total,
		Notes:    w.state.Form.Notes,
	}

	order, err := submitter.SubmitOrder(ctx, userID, req)
	if err != nil {
		if _, ok := models.IsValidationError(err); ok {
			return nil, err
		}
		return nil, &SubmitError{Err: err}
	}

	if err := c.Clear(ctx); err != nil {
		util.LogError("order "+order.Id+" placed but the cart was not cleared", err)
	}

	w.state.Step = StepSubmitted
	w.state.OrderId = order.Id
	w.state.Errors = map[string]string{}
	return order, nil
}

func (w *Wizard) replaceErrors(errs map[string]string) {
	w.state.Errors = copyErrors(errs)
}

func (w *Wizard) clearChanged(prefix string, before, after map[string]string) {
	for field, v := range after {
		if before[field] != v {
			delete(w.state.Errors, prefix+"."+field)
		}
	}
	for field, v := range before {
		if after[field] != v {
			delete(w.state.Errors, prefix+"."+field)
		}
	}
}

func copyErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

// fieldValues flattens a flat struct of strings into json name -> value.
func fieldValues(v any) map[string]string {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]string{}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(fields))
	for k, val := range fields {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}
