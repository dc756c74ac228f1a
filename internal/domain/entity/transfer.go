package entity

// TransferReceipt describes a completed transfer. Fiat transfers are simulated
// and carry no transaction hash.
type TransferReceipt struct {
	Mode        TransferMode `json:"mode"`
	Recipient   string       `json:"recipient"`
	Amount      string       `json:"amount"`
	Unit        string       `json:"unit"`
	TxHash      string       `json:"txHash,omitempty"`
	BlockNumber uint64       `json:"blockNumber,omitempty"`
	Simulated   bool         `json:"simulated"`
}
