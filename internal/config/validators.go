package config

import (
	"fmt"
	"regexp"
	"time"

	"treasury_checker/internal/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// solAddrPattern matches a base58 Solana address of 32-44 characters, the
// same check the funding-wallet paths use.
var solAddrPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// solAddressValidator validates Solana addresses.
func solAddressValidator(fl validator.FieldLevel) bool {
	return solAddrPattern.MatchString(fl.Field().String())
}

// ethAddressValidator validates Ethereum addresses.
func ethAddressValidator(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// durationValidator validates duration strings such as "5m".
func durationValidator(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" {
		return true
	}
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// walletStructValidator checks a WalletConfig's address against the rules
// of its declared blockchain.
func walletStructValidator(sl validator.StructLevel) {
	w := sl.Current().Interface().(entity.WalletConfig)
	if w.Name == "" {
		sl.ReportError(w.Name, "Name", "name", "required", "")
	}
	switch w.Blockchain {
	case entity.BlockchainSolana:
		if !solAddrPattern.MatchString(w.Address) {
			sl.ReportError(w.Address, "Address", "address", "sol_addr", "")
		}
	case entity.BlockchainEthereum:
		if !common.IsHexAddress(w.Address) {
			sl.ReportError(w.Address, "Address", "address", "eth_addr", "")
		}
	default:
		sl.ReportError(w.Blockchain, "Blockchain", "blockchain", "oneof", "")
	}
}

// NewValidator creates a validator with the custom address rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("sol_addr", solAddressValidator)
	validate.RegisterValidation("eth_addr", ethAddressValidator)
	validate.RegisterValidation("duration", durationValidator)
	validate.RegisterStructValidation(walletStructValidator, entity.WalletConfig{})
	return validate
}

// Validate runs structural validation over the loaded configuration and
// wraps any failure in entity.ErrInvalidConfig.
func Validate(cfg *Config) error {
	validate := NewValidator()

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidConfig, err)
	}
	for i, w := range cfg.Wallets {
		if err := validate.Struct(w); err != nil {
			return fmt.Errorf("%w: wallet %d (%s): %v", entity.ErrInvalidConfig, i, w.Name, err)
		}
	}
	if _, err := time.ParseDuration(cfg.Treasury.RefreshInterval); err != nil {
		return fmt.Errorf("%w: refreshInterval %q: %v", entity.ErrInvalidConfig, cfg.Treasury.RefreshInterval, err)
	}
	return nil
}
