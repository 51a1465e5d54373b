package types

import (
	"time"
)

type Pitch struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"userId"`

	Title              string    `db:"title" json:"title"`
	Summary            string    `db:"summary" json:"summary"`
	FullText           string    `db:"full_text" json:"-"`
	Sector             string    `db:"sector" json:"sector"`
	InvestmentRequired string    `db:"investment_required" json:"investmentRequired"`
	EstimatedReturns   string    `db:"estimated_returns" json:"estimatedReturns"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

type PitchForm struct {
	Title              string `form:"title" json:"title"`
	Summary            string `form:"summary" json:"summary"`
	FullText           string `form:"full_text" json:"fullText"`
	Sector             string `form:"sector" json:"sector"`
	InvestmentRequired string `form:"investment_required" json:"investmentRequired"`
	EstimatedReturns   string `form:"estimated_returns" json:"estimatedReturns"`
}
