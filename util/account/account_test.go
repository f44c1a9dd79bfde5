package account

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// first default anvil account
const anvilKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
const anvilAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestPrivateKeyFromHex(t *testing.T) {
	addr, _, err := PrivateKeyFromHex(anvilKey)
	require.NoError(t, err)
	require.Equal(t, anvilAddress, addr)

	addr, _, err = PrivateKeyFromHex(anvilKey[2:])
	require.NoError(t, err)
	require.Equal(t, anvilAddress, addr)

	_, _, err = PrivateKeyFromHex("0x1234")
	require.Error(t, err)
}

func TestLoadSignerFromEnv(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("DEPLOYER_PRIVATE_KEY", anvilKey)

	s, err := LoadSigner("")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(anvilAddress), s.Address())
}

func TestLoadSignerWithoutKey(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("DEPLOYER_PRIVATE_KEY", "")

	_, err := LoadSigner("")
	require.ErrorIs(t, err, ErrNoKey)
}

func TestLoadSignerFromKeystore(t *testing.T) {
	key, err := crypto.HexToECDSA(anvilKey[2:])
	require.NoError(t, err)
	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	acc, err := ks.ImportECDSA(key, "secret")
	require.NoError(t, err)

	t.Setenv("KEYSTORE_PASSWORD", "secret")
	s, err := LoadSigner(acc.URL.Path)
	require.NoError(t, err)
	require.Equal(t, acc.Address, s.Address())

	t.Setenv("KEYSTORE_PASSWORD", "wrong")
	_, err = LoadSigner(filepath.Clean(acc.URL.Path))
	require.Error(t, err)
}

func TestKeySignerSignsForChain(t *testing.T) {
	s, err := NewHexSigner(anvilKey)
	require.NoError(t, err)
	chainID := big.NewInt(31337)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     1,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		Value:     big.NewInt(0),
	})
	signed, err := s.SignTx(tx, chainID)
	require.NoError(t, err)
	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	require.Equal(t, s.Address(), from)
}
