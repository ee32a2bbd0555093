// Package tokens keeps the balance book of the platform. Every balance is
// a (token, holder) pair in a prefixed table of the shared database, with
// the native funding currency represented by the zero token address.
// Transfers are serialized and committed in a single transaction so that
// a debit and its matching credit can never be observed apart.
package tokens

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// NativeToken is the token address of the native funding currency.
var NativeToken = common.Address{}

var balancePrefix = []byte("tb/")

// ErrInsufficientBalance is returned when a transfer or burn exceeds the
// holder's balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Vault is the balance book. All mutations take the vault lock.
type Vault struct {
	db   db.Database
	lock sync.Mutex
}

// NewVault creates a vault on the given database.
func NewVault(database db.Database) *Vault {
	return &Vault{db: database}
}

// EscrowAddress derives the deterministic escrow account of a campaign.
// Funds raised by a campaign sit in this account until finalization.
func EscrowAddress(campaignID uint64) common.Address {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(campaignID >> (8 * i))
	}
	return common.BytesToAddress(ethcrypto.Keccak256([]byte("campaign-escrow/"), buf))
}

func balanceKey(token, holder common.Address) []byte {
	key := make([]byte, 0, 40)
	key = append(key, token.Bytes()...)
	return append(key, holder.Bytes()...)
}

func (v *Vault) readBalance(token, holder common.Address) *big.Int {
	rd := prefixeddb.NewPrefixedReader(v.db, balancePrefix)
	data, err := rd.Get(balanceKey(token, holder))
	if err != nil {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(data)
}

func writeBalance(wTx db.WriteTx, token, holder common.Address, balance *big.Int) error {
	return prefixeddb.NewPrefixedWriteTx(wTx, balancePrefix).
		Set(balanceKey(token, holder), balance.Bytes())
}

// BalanceOf returns the current balance of (token, holder).
func (v *Vault) BalanceOf(token, holder common.Address) *big.Int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.readBalance(token, holder)
}

// Mint credits amount of token to the holder.
func (v *Vault) Mint(token, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("mint amount must be positive")
	}
	v.lock.Lock()
	defer v.lock.Unlock()

	wTx := v.db.WriteTx()
	defer wTx.Discard()
	balance := v.readBalance(token, to)
	if err := writeBalance(wTx, token, to, balance.Add(balance, amount)); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	return wTx.Commit()
}

// Transfer moves amount of token from one holder to another. The debit
// and credit are committed atomically.
func (v *Vault) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	v.lock.Lock()
	defer v.lock.Unlock()

	fromBalance := v.readBalance(token, from)
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	// a self-transfer leaves the balance untouched; writing both legs
	// would credit the stale balance and create money
	if from == to {
		return nil
	}
	toBalance := v.readBalance(token, to)

	wTx := v.db.WriteTx()
	defer wTx.Discard()
	if err := writeBalance(wTx, token, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return fmt.Errorf("transfer debit: %w", err)
	}
	if err := writeBalance(wTx, token, to, toBalance.Add(toBalance, amount)); err != nil {
		return fmt.Errorf("transfer credit: %w", err)
	}
	return wTx.Commit()
}

// Burn removes amount of token from the holder.
func (v *Vault) Burn(token, from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("burn amount must be positive")
	}
	v.lock.Lock()
	defer v.lock.Unlock()

	balance := v.readBalance(token, from)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	wTx := v.db.WriteTx()
	defer wTx.Discard()
	if err := writeBalance(wTx, token, from, balance.Sub(balance, amount)); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	return wTx.Commit()
}
