package entity

// WrappedSolMint is the wrapped-SOL mint, used for native price look-ups.
const WrappedSolMint = "So11111111111111111111111111111111111111112"

// RawTokenAccount is one fungible token holding as reported by the balance
// provider, before prices are joined in.
type RawTokenAccount struct {
	Mint     string
	Symbol   string
	Name     string
	Decimals uint8
	UiAmount float64
}

// RawWalletBalances is the unpriced fetch result for a single wallet:
// the native-coin amount plus all token accounts.
type RawWalletBalances struct {
	NativeUiAmount float64
	Tokens         []RawTokenAccount
}

// TokenInfo holds display metadata for a known mint.
type TokenInfo struct {
	Symbol   string
	Name     string
	Decimals uint8
}

// PriceQuote is the resolved USD unit price for one mint.
type PriceQuote struct {
	Price float64 `json:"price"`
}

/* ----------------------- Solana JSON-RPC shapes ----------------------- */

// SolanaRPCError is the error member of a JSON-RPC response.
type SolanaRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SolanaBalanceResp is the response to getBalance.
type SolanaBalanceResp struct {
	Result *struct {
		Value uint64 `json:"value"`
	} `json:"result"`
	Error *SolanaRPCError `json:"error"`
}

// SolanaTokenAmount mirrors the parsed tokenAmount object.
type SolanaTokenAmount struct {
	Amount   string  `json:"amount"`
	Decimals uint8   `json:"decimals"`
	UiAmount float64 `json:"uiAmount"`
}

// SolanaTokenAccountsResp is the response to getTokenAccountsByOwner with
// jsonParsed encoding.
type SolanaTokenAccountsResp struct {
	Result *struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							Mint        string            `json:"mint"`
							TokenAmount SolanaTokenAmount `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
	Error *SolanaRPCError `json:"error"`
}

// SolanaTokenSupplyResp is the response to getTokenSupply.
type SolanaTokenSupplyResp struct {
	Result *struct {
		Value SolanaTokenAmount `json:"value"`
	} `json:"result"`
	Error *SolanaRPCError `json:"error"`
}

/* ------------------------- price provider shapes ------------------------ */

// JupiterPriceResp is the body of a batched price lookup: a "data" object
// keyed by mint address.
type JupiterPriceResp struct {
	Data map[string]PriceQuote `json:"data"`
}

// CoinGeckoSimplePriceResp is the body of /simple/price, keyed by coin id.
type CoinGeckoSimplePriceResp map[string]struct {
	Usd float64 `json:"usd"`
}
