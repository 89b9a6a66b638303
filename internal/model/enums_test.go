package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChamber(t *testing.T) {
	assert.Equal(t, ChamberHouse, ParseChamber("house"))
	assert.Equal(t, ChamberHouse, ParseChamber(" House "))
	assert.Equal(t, ChamberSenate, ParseChamber("SENATE"))
	assert.Equal(t, ChamberExecutive, ParseChamber("executive"))
	assert.Equal(t, ChamberOther, ParseChamber("commons"))
	assert.Equal(t, ChamberOther, ParseChamber(""))
}

func TestResolveTxType_Exact(t *testing.T) {
	assert.Equal(t, TxBuy, ResolveTxType("buy"))
	assert.Equal(t, TxSell, ResolveTxType("Sell"))
	assert.Equal(t, TxExchange, ResolveTxType("exchange"))
	assert.Equal(t, TxUnknown, ResolveTxType("unknown"))
}

func TestResolveTxType_Substring(t *testing.T) {
	assert.Equal(t, TxBuy, ResolveTxType("purchase (buy)"))
	assert.Equal(t, TxSell, ResolveTxType("sell (partial)"))
	assert.Equal(t, TxSell, ResolveTxType("Sale (Full) sell"))
}

func TestResolveTxType_Unknown(t *testing.T) {
	assert.Equal(t, TxUnknown, ResolveTxType("received"))
	assert.Equal(t, TxUnknown, ResolveTxType(""))
	assert.Equal(t, TxUnknown, ResolveTxType("exchange of assets or something"))
}

func TestResolveOwner(t *testing.T) {
	assert.Equal(t, OwnerSelf, ResolveOwner("self"))
	assert.Equal(t, OwnerSpouse, ResolveOwner(" SPOUSE "))
	assert.Equal(t, OwnerDependent, ResolveOwner("dependent"))
	assert.Equal(t, OwnerJoint, ResolveOwner("joint"))
	assert.Equal(t, OwnerUnknown, ResolveOwner("trust"))
	assert.Equal(t, OwnerUnknown, ResolveOwner(""))
}
