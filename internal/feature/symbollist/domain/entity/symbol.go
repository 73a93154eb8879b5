// Package entity defines the domain models for the symbollist feature.
package entity

import "strings"

const (
	// MarketKR は韓国市場（KRX）の銘柄を表します。
	MarketKR = "KR"
	// MarketUS は米国市場（NASDAQ/NYSE/AMEX）の銘柄を表します。
	MarketUS = "US"
)

// Symbol represents a listed security known to the directory.
type Symbol struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// Directory is a read-only, ordered table of listed securities.
// It is built once at process start and rebuilt only on restart,
// so it is safe for concurrent reads without locking.
type Directory struct {
	symbols []Symbol
	byCode  map[string]int
}

// NewDirectory は与えられた順序を保ったままDirectoryを構築します。
// 同じコードが複数回現れた場合、Lookupは最初の要素を返します。
func NewDirectory(symbols []Symbol) *Directory {
	cp := make([]Symbol, len(symbols))
	copy(cp, symbols)

	byCode := make(map[string]int, len(cp))
	for i, s := range cp {
		if _, ok := byCode[s.Code]; !ok {
			byCode[s.Code] = i
		}
	}
	return &Directory{symbols: cp, byCode: byCode}
}

// Len は登録されている銘柄数を返します。
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.symbols)
}

// Lookup はコードに一致する銘柄を返します。
func (d *Directory) Lookup(code string) (Symbol, bool) {
	if d == nil {
		return Symbol{}, false
	}
	i, ok := d.byCode[code]
	if !ok {
		return Symbol{}, false
	}
	return d.symbols[i], true
}

// MarketOf はコードの市場区分を返します。未登録のコードはKRとして扱います。
func (d *Directory) MarketOf(code string) string {
	if s, ok := d.Lookup(code); ok && s.Market != "" {
		return s.Market
	}
	return MarketKR
}

// Search は銘柄名またはコードに query を含む銘柄を、登録順に最大 limit 件返します。
// 大文字小文字は区別しません。空の query には空のスライスを返します。
func (d *Directory) Search(query string, limit int) []Symbol {
	out := []Symbol{}
	if d == nil || query == "" || limit <= 0 {
		return out
	}
	q := strings.ToLower(query)
	for _, s := range d.symbols {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Code), q) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
