package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/you/chamber/internal/types"
)

// TxFields names the keys a source uses for the transaction envelope.
type TxFields struct {
	To, Data, Value, Gas, GasPrice string
	// ValueUnit and GasPriceUnit scale decimal strings (18 = ether, 9 = gwei).
	ValueUnit, GasPriceUnit int32
}

var DefaultTxFields = TxFields{To: "to", Data: "data", Value: "value", Gas: "gas", GasPrice: "gasPrice"}

// TransactionFrom projects a decoded JSON object onto a TransactionRequest.
func TransactionFrom(source types.LiquiditySource, obj any, f TxFields) (types.TransactionRequest, error) {
	m, ok := obj.(map[string]any)
	if !ok {
		return types.TransactionRequest{}, Malformed(source, "tx", fmt.Errorf("not an object"))
	}

	to, _ := m[f.To].(string)
	if !common.IsHexAddress(to) {
		return types.TransactionRequest{}, Malformed(source, f.To, fmt.Errorf("bad address %q", to))
	}
	data, err := ParseData(m[f.Data])
	if err != nil {
		return types.TransactionRequest{}, Malformed(source, f.Data, err)
	}
	value, err := ParseWei(m[f.Value], f.ValueUnit)
	if err != nil {
		return types.TransactionRequest{}, Malformed(source, f.Value, err)
	}
	gas, err := ParseGas(m[f.Gas])
	if err != nil {
		return types.TransactionRequest{}, Malformed(source, f.Gas, err)
	}

	tx := types.TransactionRequest{
		To:       common.HexToAddress(to),
		Data:     data,
		Value:    value,
		GasLimit: gas,
	}
	if raw, present := m[f.GasPrice]; present && raw != nil {
		gp, err := ParseWei(raw, f.GasPriceUnit)
		if err != nil {
			return types.TransactionRequest{}, Malformed(source, f.GasPrice, err)
		}
		if gp.Sign() > 0 {
			tx.GasPrice = gp
		}
	}
	return tx, nil
}
