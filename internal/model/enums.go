package model

import "strings"

// Chamber identifies which body an official belongs to.
type Chamber string

const (
	ChamberHouse     Chamber = "house"
	ChamberSenate    Chamber = "senate"
	ChamberExecutive Chamber = "executive"
	ChamberOther     Chamber = "other"
)

// ParseChamber resolves a raw chamber string. Unrecognized values map to
// ChamberOther rather than failing; feed vocabulary is not controlled.
func ParseChamber(s string) Chamber {
	switch Chamber(strings.ToLower(strings.TrimSpace(s))) {
	case ChamberHouse:
		return ChamberHouse
	case ChamberSenate:
		return ChamberSenate
	case ChamberExecutive:
		return ChamberExecutive
	default:
		return ChamberOther
	}
}

// TxType is the disclosed transaction type.
type TxType string

const (
	TxBuy      TxType = "buy"
	TxSell     TxType = "sell"
	TxExchange TxType = "exchange"
	TxUnknown  TxType = "unknown"
)

// txTypeRule maps a predicate over the raw string to a transaction type.
// Rules are tried in order after an exact match fails.
type txTypeRule struct {
	match  func(string) bool
	result TxType
}

var txTypeRules = []txTypeRule{
	{func(s string) bool { return strings.Contains(s, "buy") }, TxBuy},
	{func(s string) bool { return strings.Contains(s, "sell") }, TxSell},
}

// ResolveTxType leniently resolves a raw transaction-type string: exact match
// first, then the ordered substring rules, else unknown. Never fails.
func ResolveTxType(raw string) TxType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch TxType(s) {
	case TxBuy, TxSell, TxExchange, TxUnknown:
		return TxType(s)
	}
	for _, r := range txTypeRules {
		if r.match(s) {
			return r.result
		}
	}
	return TxUnknown
}

// Owner identifies who holds the traded asset.
type Owner string

const (
	OwnerSelf      Owner = "self"
	OwnerSpouse    Owner = "spouse"
	OwnerDependent Owner = "dependent"
	OwnerJoint     Owner = "joint"
	OwnerUnknown   Owner = "unknown"
)

// ResolveOwner resolves a raw owner string to the closed owner set,
// defaulting to unknown on any mismatch.
func ResolveOwner(raw string) Owner {
	switch Owner(strings.ToLower(strings.TrimSpace(raw))) {
	case OwnerSelf:
		return OwnerSelf
	case OwnerSpouse:
		return OwnerSpouse
	case OwnerDependent:
		return OwnerDependent
	case OwnerJoint:
		return OwnerJoint
	default:
		return OwnerUnknown
	}
}
