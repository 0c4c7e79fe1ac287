package dbnfmt

import (
	"fmt"
	"time"

	"github.com/roboquant-go/roboquant/internal/quant"
)

func durationFromNanos(n int64) time.Duration { return time.Duration(n) }

// AssetTable is the dictionary a file's records index into, so a
// repeated asset identity is written once instead of on every record.
// Grounded on NimbleMarkets-dbn-go's symbol_map.go, which resolves the
// same trade-off (numeric instrument IDs on the wire, a symbology table
// at the edges) for DBN's own symbol-to-instrument mapping.
type AssetTable struct {
	assets []quant.Asset
	index  map[string]uint16
}

// NewAssetTable builds an empty table.
func NewAssetTable() *AssetTable {
	return &AssetTable{index: make(map[string]uint16)}
}

// Intern returns asset's index, registering it if this is the first
// time it has been seen.
func (t *AssetTable) Intern(asset quant.Asset) (uint16, error) {
	if idx, ok := t.index[asset.ID()]; ok {
		return idx, nil
	}
	if len(t.assets) >= 1<<16 {
		return 0, fmt.Errorf("dbnfmt: asset table full (max %d assets)", 1<<16)
	}
	idx := uint16(len(t.assets))
	t.assets = append(t.assets, asset)
	t.index[asset.ID()] = idx
	return idx, nil
}

// Lookup resolves index back to its asset.
func (t *AssetTable) Lookup(index uint16) (quant.Asset, error) {
	if int(index) >= len(t.assets) {
		return quant.Asset{}, fmt.Errorf("dbnfmt: asset index %d out of range", index)
	}
	return t.assets[index], nil
}

// Assets returns the table's assets in index order.
func (t *AssetTable) Assets() []quant.Asset {
	out := make([]quant.Asset, len(t.assets))
	copy(out, t.assets)
	return out
}

// assetTableFrom rebuilds a table from an already-decoded asset list,
// for the reader's header parse.
func assetTableFrom(assets []quant.Asset) *AssetTable {
	t := NewAssetTable()
	for _, a := range assets {
		_, _ = t.Intern(a)
	}
	return t
}
