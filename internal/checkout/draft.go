package checkout

import (
	"context"
	"errors"

	"topup-service/internal/models"
	"topup-service/internal/pricing"
)

// Validation errors surfaced to the customer before any side effect runs.
var (
	ErrNoService      = errors.New("no service selected")
	ErrMissingGameID  = errors.New("game id is required")
	ErrMissingServer  = errors.New("server is required")
	ErrMissingPhone   = errors.New("phone number is required")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
)

// IsValidationError reports whether err is a user-correctable checkout error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoService) ||
		errors.Is(err, ErrMissingGameID) ||
		errors.Is(err, ErrMissingServer) ||
		errors.Is(err, ErrMissingPhone)
}

// Draft holds checkout form state. It is a value type updated through
// reducer-style transitions; every change returns a new Draft.
type Draft struct {
	Service  *models.Service
	GameID   string
	Server   string
	Customer models.CustomerDetails

	coupon   *models.Coupon
	inFlight bool
}

// New returns an empty draft.
func New() Draft {
	return Draft{}
}

// WithService selects the service being purchased.
func (d Draft) WithService(svc *models.Service) Draft {
	d.Service = svc
	return d
}

// WithGameID sets the game account identifier.
func (d Draft) WithGameID(gameID string) Draft {
	d.GameID = gameID
	return d
}

// WithServer sets the game server identifier.
func (d Draft) WithServer(server string) Draft {
	d.Server = server
	return d
}

// WithCustomer sets the customer contact details.
func (d Draft) WithCustomer(c models.CustomerDetails) Draft {
	d.Customer = c
	return d
}

// AppliedCoupon returns the currently applied coupon, if any.
func (d Draft) AppliedCoupon() *models.Coupon {
	return d.coupon
}

// ApplyCoupon validates a code against the pricing engine and applies it if
// valid. An invalid code leaves the draft's coupon state untouched; the
// returned quote carries CouponValid=false so the caller can surface a
// notice. Re-applying the same valid code is idempotent.
func (d Draft) ApplyCoupon(ctx context.Context, engine *pricing.Engine, code string) (Draft, pricing.Quote) {
	q := engine.Quote(ctx, d.Service, code)
	if q.CouponValid && q.CouponCode != "" {
		coupon, _ := engine.Lookup(ctx, code)
		d.coupon = &coupon
	}
	return d, q
}

// RemoveCoupon clears the applied coupon, resetting the discount to zero.
func (d Draft) RemoveCoupon() Draft {
	d.coupon = nil
	return d
}

// Quote prices the draft as it stands.
func (d Draft) Quote(ctx context.Context, engine *pricing.Engine) pricing.Quote {
	code := ""
	if d.coupon != nil {
		code = d.coupon.Code
	}
	return engine.Quote(ctx, d.Service, code)
}

// Validate checks the required fields. It returns the first failure so the
// customer sees one actionable message at a time.
func (d Draft) Validate() error {
	if d.Service == nil {
		return ErrNoService
	}
	if d.GameID == "" {
		return ErrMissingGameID
	}
	if d.Server == "" {
		return ErrMissingServer
	}
	if d.Customer.Phone == "" {
		return ErrMissingPhone
	}
	return nil
}

// BeginSubmit marks the draft as having a submission in flight. A second
// BeginSubmit before EndSubmit fails, so one form instance can never have two
// concurrent submissions.
func (d Draft) BeginSubmit() (Draft, error) {
	if d.inFlight {
		return d, ErrSubmitInFlight
	}
	d.inFlight = true
	return d, nil
}

// EndSubmit clears the in-flight flag once the submission settled.
func (d Draft) EndSubmit() Draft {
	d.inFlight = false
	return d
}

// Submission is the payload handed to the order submission pipeline.
type Submission struct {
	GameID      string
	Server      string
	Customer    models.CustomerDetails
	Service     models.Service
	Subtotal    int64
	Discount    int64
	FinalAmount int64
	CouponCode  string
}

// BuildSubmission validates the draft and assembles the pipeline payload,
// pricing the selected service against the applied coupon.
func (d Draft) BuildSubmission(ctx context.Context, engine *pricing.Engine) (*Submission, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	q := d.Quote(ctx, engine)
	return &Submission{
		GameID:      d.GameID,
		Server:      d.Server,
		Customer:    d.Customer,
		Service:     *d.Service,
		Subtotal:    q.Subtotal,
		Discount:    q.Discount,
		FinalAmount: q.FinalAmount,
		CouponCode:  q.CouponCode,
	}, nil
}
