package service

import (
	"fmt"
	"sort"
	"strings"

	"treasury_checker/internal/entity"
)

// Normalizer turns raw per-wallet balances and a resolved price table into a
// WalletSnapshot. It is pure: no I/O, same inputs give the same output.
type Normalizer struct {
	classifier       TokenClassifier
	projectTokenMint string
}

// NewNormalizer creates a Normalizer with the given LP classifier.
func NewNormalizer(classifier TokenClassifier, projectTokenMint string) *Normalizer {
	return &Normalizer{
		classifier:       classifier,
		projectTokenMint: projectTokenMint,
	}
}

// Normalize builds the snapshot for one wallet. The native-coin entry is
// always present and always first, even at zero balance, so consumers can
// rely on the shape. Tokens without a resolved price are kept at zero USD
// value rather than dropped.
func (n *Normalizer) Normalize(
	wallet entity.WalletConfig,
	raw entity.RawWalletBalances,
	prices map[string]float64,
	nativePrice float64,
) entity.WalletSnapshot {
	balances := make([]entity.TokenBalance, 0, len(raw.Tokens)+1)
	balances = append(balances, nativeEntry(wallet.Blockchain, raw.NativeUiAmount, nativePrice))

	for _, tok := range raw.Tokens {
		balances = append(balances, n.tokenEntry(tok, prices))
	}

	n.sortBalances(balances)

	total := 0.0
	for _, b := range balances {
		total += b.UsdValue
	}

	return entity.WalletSnapshot{
		WalletID:      WalletID(wallet),
		Name:          wallet.Name,
		Address:       wallet.Address,
		Blockchain:    wallet.Blockchain,
		Balances:      balances,
		TotalUsdValue: total,
	}
}

// WalletID derives the stable identifier used in API responses.
func WalletID(wallet entity.WalletConfig) string {
	return strings.ReplaceAll(strings.ToLower(wallet.Name), " ", "-")
}

func nativeEntry(chain entity.Blockchain, amount, price float64) entity.TokenBalance {
	entry := entity.TokenBalance{
		Balance:  amount,
		UsdValue: amount * price,
	}
	switch chain {
	case entity.BlockchainEthereum:
		entry.TokenSymbol = "ETH"
		entry.TokenName = "Ethereum"
	default:
		entry.TokenSymbol = "SOL"
		entry.TokenName = "Solana"
		entry.TokenAddress = entity.WrappedSolMint
	}
	return entry
}

func (n *Normalizer) tokenEntry(tok entity.RawTokenAccount, prices map[string]float64) entity.TokenBalance {
	price := prices[tok.Mint]
	usd := tok.UiAmount * price

	entry := entity.TokenBalance{
		TokenSymbol:  tok.Symbol,
		TokenName:    tok.Name,
		Balance:      tok.UiAmount,
		UsdValue:     usd,
		TokenAddress: tok.Mint,
	}
	if entry.TokenSymbol == "" {
		entry.TokenSymbol = shortMint(tok.Mint)
	}
	if entry.TokenName == "" {
		entry.TokenName = "Unknown Token"
	}

	if cls := n.classifier.Classify(tok.Mint, tok.UiAmount, prices); cls != nil {
		entry.IsLpToken = true
		entry.Platform = cls.Platform
		entry.LpDetails = cls.Details
		// LP mints carry no quote of their own; the position is worth
		// whatever its legs are worth.
		entry.UsdValue = cls.Details.TotalUsdValue
		if cls.Name != "" {
			entry.TokenName = cls.Name
		}
	}
	return entry
}

// sortBalances orders entries for display: native coin first, then the
// project token, then plain tokens by descending USD value, LP positions
// last.
func (n *Normalizer) sortBalances(balances []entity.TokenBalance) {
	if len(balances) < 2 {
		return
	}
	rest := balances[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].IsLpToken != rest[j].IsLpToken {
			return !rest[i].IsLpToken
		}
		iProject := n.projectTokenMint != "" && rest[i].TokenAddress == n.projectTokenMint
		jProject := n.projectTokenMint != "" && rest[j].TokenAddress == n.projectTokenMint
		if iProject != jProject {
			return iProject
		}
		return rest[i].UsdValue > rest[j].UsdValue
	})
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return fmt.Sprintf("%s...%s", mint[:4], mint[len(mint)-4:])
}
