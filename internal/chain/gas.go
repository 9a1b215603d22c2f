package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GasInfo holds current gas pricing data for the node.
type GasInfo struct {
	GasPrice     *big.Int // legacy eth_gasPrice (Wei)
	BaseFee      *big.Int // EIP-1559 base fee (Wei), nil on legacy chains
	GasPriceGwei float64
	BaseFeeGwei  float64
}

// GasPriceDisplay returns the best gas price for display (Gwei) and whether
// the chain supports EIP-1559.
func (g *GasInfo) GasPriceDisplay() (gwei float64, isEIP1559 bool) {
	if g.BaseFee != nil && g.BaseFeeGwei > 0 {
		return g.BaseFeeGwei, true
	}
	return g.GasPriceGwei, false
}

// GasPrice returns the node's suggested legacy gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := c.provider.Send(ctx, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return price.ToInt(), nil
}

// BlockNumber returns the number of the most recent block.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.provider.Send(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// GetGasInfo fetches the gas price and, when the latest block carries one,
// the base fee.
func (c *EVMClient) GetGasInfo(ctx context.Context) (*GasInfo, error) {
	gp, err := c.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	info := &GasInfo{
		GasPrice:     gp,
		GasPriceGwei: WeiToGwei(gp),
	}
	var block struct {
		BaseFeePerGas *hexutil.Big `json:"baseFeePerGas"`
	}
	// Legacy nodes omit the field; a failed lookup only loses the base fee.
	if err := c.provider.Send(ctx, &block, "eth_getBlockByNumber", "latest", false); err == nil && block.BaseFeePerGas != nil {
		info.BaseFee = block.BaseFeePerGas.ToInt()
		info.BaseFeeGwei = WeiToGwei(info.BaseFee)
	}
	return info, nil
}

// WeiToGwei converts a Wei value to Gwei as float64.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetFloat64(1e9),
	).Float64()
	return f
}
