package offer

type CreateOfferInput struct {
	LenderID     int64
	Title        string
	Description  string
	MinAmount    float64
	MaxAmount    float64
	InterestRate float64 // annual, percent
	Term         int     // months
}
