package domain

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// NegativeThreshold is the rating below which a review counts as negative.
const NegativeThreshold = 3

type Rating int

func NewRating(value int) (Rating, error) {
	if value < 1 || value > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5: %d", value)
	}
	return Rating(value), nil
}

func (r Rating) Int() int {
	return int(r)
}

func (r Rating) Float64() float64 {
	return float64(r)
}

func (r Rating) IsNegative() bool {
	return int(r) < NegativeThreshold
}

// Preview はレビュー本文を表示幅 width で切り詰める。全角文字は 2 桁として数える。
func Preview(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "")
}
