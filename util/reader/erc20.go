package reader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/scprotocol/scctl/contracts"
)

// BigResult extracts a single uint256 output from r.
func BigResult(r CallResult) (*big.Int, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if len(r.Values) == 0 {
		return nil, fmt.Errorf("empty result")
	}
	v, ok := r.Values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected uint256, got %T", r.Values[0])
	}
	return v, nil
}

func (er *EthReader) ERC20Balance(ctx context.Context, token contracts.Contract, owner common.Address) (*big.Int, error) {
	return BigResult(er.ReadContract(ctx, NewCall(token, "balanceOf", owner)))
}

func (er *EthReader) ERC20Allowance(
	ctx context.Context,
	token contracts.Contract,
	owner, spender common.Address,
) (*big.Int, error) {
	return BigResult(er.ReadContract(ctx, NewCall(token, "allowance", owner, spender)))
}
