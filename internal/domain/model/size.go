package model

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// サイズ（参照データ）
type Size struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Value string `gorm:"column:size_value;type:varchar(20);not null;uniqueIndex" json:"size_value"`
}

// カテゴリ（参照データ）
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

// 数値として読めるサイズは数値順、読めないものは後ろ。同値は文字列順
func SortSizeStocks(rows []SizeStock) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessSizeValue(rows[i].Value, rows[j].Value)
	})
}

func lessSizeValue(a, b string) bool {
	fa, okA := parseSizeValue(a)
	fb, okB := parseSizeValue(b)
	switch {
	case okA && okB:
		if fa != fb {
			return fa < fb
		}
	case okA:
		return true
	case okB:
		return false
	}
	return a < b
}

func parseSizeValue(v string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	//NaN/Infは数値として並べない
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
