package application

type SubmitInput struct {
	BorrowerID  int64
	OfferID     int64
	Amount      float64
	Purpose     string
	CreditScore int
	Income      float64
}

// DecisionInput identifies the application and the lender deciding on it.
type DecisionInput struct {
	ApplicationID int64
	LenderID      int64
}
