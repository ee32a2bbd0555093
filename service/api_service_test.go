package service

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.uber.org/goleak"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestMain(m *testing.M) {
	// the API server goroutine outlives the tests by design
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*Server).Serve"),
		goleak.IgnoreAnyFunction("net/http.ListenAndServe"),
	)
}

func TestNodeAssembly(t *testing.T) {
	c := qt.New(t)

	admin := common.HexToAddress("0xadadadadadadadadadadadadadadadadadadadad")
	node, err := NewNode(metadb.NewTest(t), admin, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(node.Ledger, qt.IsNotNil)
	c.Assert(node.Exchange, qt.IsNotNil)
	c.Assert(node.Registry.HasRole("admin", admin), qt.IsTrue)
}

func TestAPIService(t *testing.T) {
	c := qt.New(t)

	admin := common.HexToAddress("0xadadadadadadadadadadadadadadadadadadadad")
	node, err := NewNode(metadb.NewTest(t), admin, nil)
	c.Assert(err, qt.IsNil)

	// Port 0 lets the OS choose an available port
	apiService := NewAPI(node, "127.0.0.1", 0)

	ctx := context.Background()
	c.Assert(apiService.Start(ctx), qt.IsNil)
	defer apiService.Stop()

	// Give the service time to start
	time.Sleep(time.Second)

	// Starting an already running service fails
	err = apiService.Start(ctx)
	c.Assert(err, qt.ErrorMatches, "service already running")

	host, port := apiService.HostPort()
	c.Assert(host, qt.Equals, "127.0.0.1")
	c.Assert(port, qt.Equals, 0)
}
