package types

// Network represents supported blockchain networks
type Network string

const (
	NetworkSolana        Network = "solana"
	NetworkSolanaMainnet Network = "solana-mainnet"
	NetworkSolanaDevnet  Network = "solana-devnet" // testnet
)

// DisplayName is the human readable network name used in data responses.
func (n Network) DisplayName() string {
	switch n {
	case NetworkSolana, NetworkSolanaMainnet:
		return "Solana"
	case NetworkSolanaDevnet:
		return "Solana Devnet"
	default:
		return string(n)
	}
}

func (n Network) IsSolana() bool {
	return n == NetworkSolana || n == NetworkSolanaMainnet || n == NetworkSolanaDevnet
}

func (n Network) IsTestnet() bool {
	return n == NetworkSolanaDevnet
}

func (n Network) String() string {
	return string(n)
}
