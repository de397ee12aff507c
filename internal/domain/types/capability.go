package types

// Capability is a wallet-signed sign-in statement delegating the listed
// resources to a session key (URI) until ExpirationTime.
type Capability struct {
	Domain         string    `json:"domain"`
	Address        string    `json:"address"`
	Statement      string    `json:"statement"`
	URI            string    `json:"uri"`
	Version        string    `json:"version"`
	Namespace      Namespace `json:"namespace"`
	ChainID        string    `json:"chainId"`
	Nonce          string    `json:"nonce"`
	IssuedAt       string    `json:"issuedAt"`
	ExpirationTime string    `json:"expirationTime,omitempty"`
	Resources      []string  `json:"resources,omitempty"`

	// Scheme names the signature algorithm, e.g. "eip191" or "solana:ed25519".
	Scheme    string `json:"scheme,omitempty"`
	Signature string `json:"signature,omitempty"`
}
