package params

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Exchange configures the trading pair. Both token contract addresses are
// fixed at construction; deposits from any other token are declined.
type Exchange struct {
	BaseAsset  common.Address
	QuoteAsset common.Address
}

type Node struct {
	DBPath     string // pebble directory; empty disables persistence
	APIAddr    string // REST/websocket listen address
	LogFile    string
	CORSOrigin string
}

type Config struct {
	Exchange Exchange
	Node     Node
}

func Default() Config {
	return Config{
		Exchange: Exchange{
			// Devnet token addresses; override via BASE_ASSET / QUOTE_ASSET.
			BaseAsset:  common.HexToAddress("0x0000000000000000000000000000000000000b01"),
			QuoteAsset: common.HexToAddress("0x0000000000000000000000000000000000000c01"),
		},
		Node: Node{
			DBPath:     "data/settlement.db",
			APIAddr:    ":8080",
			LogFile:    "data/node.log",
			CORSOrigin: "http://localhost:3000",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and the
// environment. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("BASE_ASSET"); v != "" {
		if !common.IsHexAddress(v) {
			return cfg, fmt.Errorf("BASE_ASSET %q is not a hex address", v)
		}
		cfg.Exchange.BaseAsset = common.HexToAddress(v)
	}
	if v := os.Getenv("QUOTE_ASSET"); v != "" {
		if !common.IsHexAddress(v) {
			return cfg, fmt.Errorf("QUOTE_ASSET %q is not a hex address", v)
		}
		cfg.Exchange.QuoteAsset = common.HexToAddress(v)
	}
	if cfg.Exchange.BaseAsset == cfg.Exchange.QuoteAsset {
		return cfg, fmt.Errorf("base and quote assets must differ")
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Node.DBPath = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Node.APIAddr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Node.LogFile = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.Node.CORSOrigin = v
	}

	return cfg, nil
}
