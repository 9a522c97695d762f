package state

// Affordance is the single control the screen offers.
type Affordance int

const (
	AffordanceConnect Affordance = iota
	AffordanceLoading
	AffordanceWithdraw
	AffordanceClaim
	AffordanceMint
)

func (a Affordance) String() string {
	switch a {
	case AffordanceConnect:
		return "connect"
	case AffordanceLoading:
		return "loading"
	case AffordanceWithdraw:
		return "withdraw"
	case AffordanceClaim:
		return "claim"
	case AffordanceMint:
		return "mint"
	default:
		return "unknown"
	}
}

// Select picks the affordance for v. Order matters: an owner with
// unclaimed NFTs is offered withdraw, not claim.
func Select(v ViewState) Affordance {
	switch {
	case v.Busy:
		return AffordanceLoading
	case !v.WalletConnected:
		return AffordanceConnect
	case v.IsOwner:
		return AffordanceWithdraw
	case v.TokensToBeClaimed > 0:
		return AffordanceClaim
	default:
		return AffordanceMint
	}
}
