package model

import "time"

// DocumentName identifies a persisted document.
type DocumentName string

// Current documents, stored under the ServerRewards/ prefix.
const (
	DocBalances  DocumentName = "ServerRewards/player_balances"
	DocNpcStores DocumentName = "ServerRewards/npc_stores"
	DocProducts  DocumentName = "ServerRewards/products"
	DocPrices    DocumentName = "ServerRewards/sell_prices"
	DocCooldowns DocumentName = "ServerRewards/purchase_cooldowns"
)

// Legacy documents written by the previous schema version.
const (
	LegacyPlayerData   DocumentName = "ServerRewards/player_data"
	LegacyCooldownData DocumentName = "ServerRewards/cooldown_data"
	LegacyNpcData      DocumentName = "ServerRewards/npc_data"
	LegacyRewardData   DocumentName = "ServerRewards/reward_data"
	LegacySaleData     DocumentName = "ServerRewards/sale_data"
)

// CurrentDocuments lists every document the service owns.
var CurrentDocuments = []DocumentName{DocBalances, DocNpcStores, DocProducts, DocPrices, DocCooldowns}

// LegacyDocuments lists the previous schema's documents.
var LegacyDocuments = []DocumentName{LegacyPlayerData, LegacyCooldownData, LegacyNpcData, LegacyRewardData, LegacySaleData}

// Archived returns the v1/ location a legacy document is moved to.
func (n DocumentName) Archived() DocumentName {
	const prefix = "ServerRewards/"
	name := string(n)
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return DocumentName(prefix + "v1/" + name[len(prefix):])
	}
	return DocumentName("v1/" + name)
}

// Document is a persisted document body.
type Document struct {
	Name      DocumentName
	Body      []byte
	UpdatedAt time.Time
}

// BufferedDocument is a pending document write held in the write-behind buffer.
type BufferedDocument struct {
	Name      DocumentName `json:"name"`
	Body      []byte       `json:"body"`
	UpdatedAt time.Time    `json:"updated_at"`
}
