package cardano

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LovelaceDecimals is the number of decimal places of one ADA.
const LovelaceDecimals = 6

// MinUTxOLovelace is the amount sent along with freshly minted tokens.
const MinUTxOLovelace = 2_000_000

// ErrInvalidAmount is returned for amounts that are negative, fractional
// in lovelace or of an unsupported type.
var ErrInvalidAmount = errors.New("invalid amount")

var lovelacePerAda = decimal.New(1, LovelaceDecimals)

// AdaToLovelace converts an ADA amount to lovelace.
//
// Supported input types: string, float64, int64, int, decimal.Decimal and
// *decimal.Decimal.
func AdaToLovelace(iamount any) (*big.Int, error) {
	var amount decimal.Decimal
	switch v := iamount.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			zap.L().Debug("failed to parse ada amount", zap.String("amount", v), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		amount = d
	case float64:
		amount = decimal.NewFromFloat(v)
	case int64:
		amount = decimal.NewFromInt(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return nil, fmt.Errorf("%w: nil decimal", ErrInvalidAmount)
		}
		amount = *v
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, iamount)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	lovelace := amount.Mul(lovelacePerAda)
	if !lovelace.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, amount, LovelaceDecimals)
	}
	return lovelace.BigInt(), nil
}

// LovelaceToAda converts lovelace to ADA with six decimal places.
//
// Supported input types: string, *big.Int, int64 and int.
func LovelaceToAda(ivalue any) (decimal.Decimal, error) {
	var value *big.Int
	switch v := ivalue.(type) {
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %q is not an integer", ErrInvalidAmount, v)
		}
		value = n
	case *big.Int:
		if v == nil {
			return decimal.Zero, fmt.Errorf("%w: nil value", ErrInvalidAmount)
		}
		value = v
	case int64:
		value = big.NewInt(v)
	case int:
		value = big.NewInt(int64(v))
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, ivalue)
	}
	return decimal.NewFromBigInt(value, -LovelaceDecimals), nil
}
