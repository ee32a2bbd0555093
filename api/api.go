package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/crowdveil/crowdveil/exchange"
	"github.com/crowdveil/crowdveil/ledger"
	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/registry"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host     string
	Port     int
	Ledger   *ledger.Ledger
	Exchange *exchange.Exchange
	Registry *registry.Registry
}

// API type represents the API HTTP server.
type API struct {
	router   *chi.Mux
	ledger   *ledger.Ledger
	exchange *exchange.Exchange
	registry *registry.Registry
}

// New creates a new API instance with the given configuration and starts
// the HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Ledger == nil || conf.Exchange == nil || conf.Registry == nil {
		return nil, fmt.Errorf("missing engine instances")
	}
	a := &API{
		ledger:   conf.Ledger,
		exchange: conf.Exchange,
		registry: conf.Registry,
	}

	// Initialize router
	a.initRouter()
	go func() {
		log.Infow("Starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})

	log.Infow("register handler", "endpoint", CampaignsEndpoint, "method", "POST")
	a.router.Post(CampaignsEndpoint, a.launchCampaign)
	log.Infow("register handler", "endpoint", CampaignsEndpoint, "method", "GET")
	a.router.Get(CampaignsEndpoint, a.listCampaigns)
	log.Infow("register handler", "endpoint", CampaignEndpoint, "method", "GET")
	a.router.Get(CampaignEndpoint, a.campaign)
	log.Infow("register handler", "endpoint", CampaignBackingsEndpoint, "method", "GET")
	a.router.Get(CampaignBackingsEndpoint, a.campaignBackings)
	log.Infow("register handler", "endpoint", ContributeEndpoint, "method", "POST")
	a.router.Post(ContributeEndpoint, a.contribute)
	log.Infow("register handler", "endpoint", FinalizeEndpoint, "method", "POST")
	a.router.Post(FinalizeEndpoint, a.finalizeCampaign)
	log.Infow("register handler", "endpoint", ClaimVestedEndpoint, "method", "POST")
	a.router.Post(ClaimVestedEndpoint, a.claimVested)
	log.Infow("register handler", "endpoint", ClaimRefundEndpoint, "method", "POST")
	a.router.Post(ClaimRefundEndpoint, a.claimRefund)
	log.Infow("register handler", "endpoint", CancelCampaignEndpoint, "method", "POST")
	a.router.Post(CancelCampaignEndpoint, a.cancelCampaign)
	log.Infow("register handler", "endpoint", VerifyCampaignEndpoint, "method", "POST")
	a.router.Post(VerifyCampaignEndpoint, a.verifyCampaign)
	log.Infow("register handler", "endpoint", CampaignMetadataEndpoint, "method", "PUT")
	a.router.Put(CampaignMetadataEndpoint, a.updateCampaignMetadata)
	log.Infow("register handler", "endpoint", PauseCampaignEndpoint, "method", "POST")
	a.router.Post(PauseCampaignEndpoint, a.pauseCampaign)
	log.Infow("register handler", "endpoint", ResumeCampaignEndpoint, "method", "POST")
	a.router.Post(ResumeCampaignEndpoint, a.resumeCampaign)

	log.Infow("register handler", "endpoint", PoolsEndpoint, "method", "POST")
	a.router.Post(PoolsEndpoint, a.createPool)
	log.Infow("register handler", "endpoint", PoolsEndpoint, "method", "GET")
	a.router.Get(PoolsEndpoint, a.listPools)
	log.Infow("register handler", "endpoint", PoolEndpoint, "method", "GET")
	a.router.Get(PoolEndpoint, a.pool)
	log.Infow("register handler", "endpoint", PausePoolEndpoint, "method", "POST")
	a.router.Post(PausePoolEndpoint, a.pausePool)
	log.Infow("register handler", "endpoint", ResumePoolEndpoint, "method", "POST")
	a.router.Post(ResumePoolEndpoint, a.resumePool)
	log.Infow("register handler", "endpoint", LiquidityEndpoint, "method", "POST")
	a.router.Post(LiquidityEndpoint, a.addLiquidity)
	log.Infow("register handler", "endpoint", LiquidityEndpoint, "method", "DELETE")
	a.router.Delete(LiquidityEndpoint, a.removeLiquidity)
	log.Infow("register handler", "endpoint", SwapEndpoint, "method", "POST")
	a.router.Post(SwapEndpoint, a.swap)

	log.Infow("register handler", "endpoint", OrdersEndpoint, "method", "POST")
	a.router.Post(OrdersEndpoint, a.createOrder)
	log.Infow("register handler", "endpoint", OrdersEndpoint, "method", "GET")
	a.router.Get(OrdersEndpoint, a.listOrders)
	log.Infow("register handler", "endpoint", OrderEndpoint, "method", "GET")
	a.router.Get(OrderEndpoint, a.order)
	log.Infow("register handler", "endpoint", FillOrderEndpoint, "method", "POST")
	a.router.Post(FillOrderEndpoint, a.fillOrder)
	log.Infow("register handler", "endpoint", CancelOrderEndpoint, "method", "POST")
	a.router.Post(CancelOrderEndpoint, a.cancelOrder)
	log.Infow("register handler", "endpoint", ExpireOrderEndpoint, "method", "POST")
	a.router.Post(ExpireOrderEndpoint, a.expireOrder)

	log.Infow("register handler", "endpoint", CreatorsEndpoint, "method", "POST")
	a.router.Post(CreatorsEndpoint, a.registerCreator)
	log.Infow("register handler", "endpoint", CreatorEndpoint, "method", "GET")
	a.router.Get(CreatorEndpoint, a.creatorProfile)
	log.Infow("register handler", "endpoint", VerifyCreatorEndpoint, "method", "POST")
	a.router.Post(VerifyCreatorEndpoint, a.verifyCreator)
	log.Infow("register handler", "endpoint", RolesEndpoint, "method", "POST")
	a.router.Post(RolesEndpoint, a.setRole)

	log.Infow("register handler", "endpoint", ExchangeKeyEndpoint, "method", "GET")
	a.router.Get(ExchangeKeyEndpoint, a.exchangeKey)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
