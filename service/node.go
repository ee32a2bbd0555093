// Package service wires the platform components together and manages
// their lifecycle.
package service

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.vocdoni.io/dvote/db"

	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/exchange"
	"github.com/crowdveil/crowdveil/ledger"
	"github.com/crowdveil/crowdveil/registry"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/tokens"
)

// Node bundles the engines of a running platform instance over one
// database.
type Node struct {
	Storage  *storage.Storage
	Vault    *tokens.Vault
	Registry *registry.Registry
	Ledger   *ledger.Ledger
	Exchange *exchange.Exchange
	Bus      *events.Bus
}

// NewNode assembles every engine on the given database. The admin address
// receives the admin role on first run; promRegistry may be nil to
// disable event metrics.
func NewNode(database db.Database, admin common.Address, promRegistry prometheus.Registerer) (*Node, error) {
	stg := storage.New(database)
	vault := tokens.NewVault(database)
	bus := events.NewBus(promRegistry)

	reg, err := registry.New(stg, bus, admin)
	if err != nil {
		return nil, fmt.Errorf("initialize registry: %w", err)
	}
	led := ledger.New(stg, vault, reg, bus, database)
	ex, err := exchange.New(stg, vault, reg, bus)
	if err != nil {
		return nil, fmt.Errorf("initialize exchange: %w", err)
	}
	return &Node{
		Storage:  stg,
		Vault:    vault,
		Registry: reg,
		Ledger:   led,
		Exchange: ex,
		Bus:      bus,
	}, nil
}

// Close releases the node's resources.
func (n *Node) Close() {
	n.Storage.Close()
}
