package nillion

import "fmt"

// Network selects the remote network configuration a wallet record targets
type Network string

const (
	Testnet Network = "testnet"
	Mainnet Network = "mainnet"
)

// Networks lists every supported network in the order records are created
var Networks = []Network{Testnet, Mainnet}

// Config describes endpoints and display data of a Nillion network
type Config struct {
	ChainID     string
	RPCURL      string
	RESTURL     string
	GRPCURL     string
	NilauthURL  string
	NildbNodes  []string
	Name        string
	Symbol      string
	Decimals    int
	ExplorerURL string
}

var configs = map[Network]Config{
	Testnet: {
		ChainID:    "nillion-chain-testnet-1",
		RPCURL:     "http://rpc.testnet.nilchain-rpc-proxy.nilogy.xyz",
		RESTURL:    "https://api.testnet.nilchain-rpc-proxy.nilogy.xyz",
		GRPCURL:    "https://testnet-nillion-grpc.lavenderfive.com",
		NilauthURL: "https://nilauth.sandbox.app-cluster.sandbox.nilogy.xyz",
		NildbNodes: []string{
			"https://nildb-stg-n1.nillion.network",
			"https://nildb-stg-n2.nillion.network",
			"https://nildb-stg-n3.nillion.network",
		},
		Name:        "Nillion Testnet",
		Symbol:      "NIL",
		Decimals:    18,
		ExplorerURL: "https://testnet.nillion.network",
	},
	Mainnet: {
		ChainID:    "nillion-1",
		RPCURL:     "http://nilchain-rpc.nillion.network",
		RESTURL:    "https://nilchain-api.nillion.network",
		GRPCURL:    "https://nillion-grpc.lavenderfive.com",
		NilauthURL: "https://nilauth-cf7f.nillion.network",
		NildbNodes: []string{
			"https://nildb-5ab1.nillion.network",
			"https://nildb-8001.cloudician.xyz",
			"https://nildb-f496.pairpointweb3.io",
			"https://nildb-f375.stcbahrain.net",
			"https://nildb-2140.staking.telekom-mms.com",
		},
		Name:        "Nillion Mainnet",
		Symbol:      "NIL",
		Decimals:    18,
		ExplorerURL: "https://nillion.network",
	},
}

// ParseNetwork converts a string into a Network
func ParseNetwork(s string) (Network, error) {
	n := Network(s)
	if _, ok := configs[n]; !ok {
		return "", fmt.Errorf("unknown network %q: must be testnet or mainnet", s)
	}
	return n, nil
}

// NetworkConfig returns the configuration of a network
func NetworkConfig(n Network) (Config, error) {
	cfg, ok := configs[n]
	if !ok {
		return Config{}, fmt.Errorf("unknown network %q", n)
	}
	// copy so callers cannot mutate the shared node list
	cfg.NildbNodes = append([]string(nil), cfg.NildbNodes...)
	return cfg, nil
}

func (n Network) String() string {
	return string(n)
}
