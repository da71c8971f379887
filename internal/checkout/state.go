package checkout

type State int

const (
	Idle State = iota
	AwaitingPaymentMethod
	AwaitingAmount
	Processing
	Completed
)

var stateNames = [...]string{
	Idle:                  "idle",
	AwaitingPaymentMethod: "awaiting_payment_method",
	AwaitingAmount:        "awaiting_amount",
	Processing:            "processing",
	Completed:             "completed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// open reports whether the payment modal is showing and editable.
func (s State) open() bool {
	return s == AwaitingPaymentMethod || s == AwaitingAmount
}
