package types

import "time"

type InvestorPreference struct {
	UserID          string    `db:"user_id" json:"-"`
	Sectors         []string  `db:"sectors" json:"sectors" form:"sectors"`
	InvestmentRange string    `db:"investment_range" json:"investmentRange" form:"investment_range"`
	RiskAppetite    string    `db:"risk_appetite" json:"riskAppetite" form:"risk_appetite"`
	Notes           *string   `db:"notes" json:"notes,omitempty" form:"notes"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// MatchResult pairs a pitch with an investor's preferences. It is computed
// per request and never persisted.
type MatchResult struct {
	Pitch       *Pitch  `json:"pitch"`
	MatchScore  float64 `json:"matchScore"`
	MatchReason string  `json:"matchReason"`
}
