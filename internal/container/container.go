package container

import (
	"context"
	"time"

	"citystore-api-io/api/config"
	"citystore-api-io/api/internal/auth"
	"citystore-api-io/api/internal/cache"
	"citystore-api-io/api/internal/middleware"
	"citystore-api-io/api/pkg/cart"
	"citystore-api-io/api/pkg/checkout"
	"citystore-api-io/api/pkg/controllers"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/services"
	"citystore-api-io/api/pkg/store"
	"citystore-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies are the backends the services run on.
type Dependencies struct {
	Products    store.ProductStore
	Orders      store.OrderStore
	CartStorage cart.Storage
	Publisher   cache.Publisher
	Media       util.MediaUploader
	Blacklist   auth.Blacklist
	Redis       *redis.Client
}

// MemoryDependencies runs everything in process, seeded with the given catalog.
func MemoryDependencies(seed []models.Product) Dependencies {
	return Dependencies{
		Products:    store.NewMemoryProductStore(seed),
		Orders:      store.NewMemoryOrderStore(),
		CartStorage: cart.NewMemoryStorage(),
		Publisher:   cache.NopPublisher{},
		Blacklist:   auth.NewMemoryBlacklist(),
	}
}

// Connect builds the dependencies the config asks for. The returned close
// function releases every connection that was opened.
func Connect(ctx context.Context, cfg *config.Config) (Dependencies, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := Dependencies{}

	switch cfg.Store {
	case config.StoreMongo:
		client, err := config.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return deps, func() {}, err
		}
		closers = append(closers, func() { disconnectMongo(client) })

		db := client.Database(cfg.MongoDatabase)
		deps.Products = store.NewMongoProductStore(db)
		deps.Orders = store.NewMongoOrderStore(db)
	default:
		seed, err := loadSeed(cfg.SeedFile)
		if err != nil {
			return deps, func() {}, err
		}
		deps.Products = store.NewMemoryProductStore(seed)
		deps.Orders = store.NewMemoryOrderStore()
	}

	if cfg.RedisURL != "" {
		client, err := config.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return deps, func() {}, err
		}
		closers = append(closers, func() { _ = client.Close() })

		deps.Redis = client
		deps.CartStorage = cart.NewRedisStorage(client, cfg.CartTTL)
		deps.Publisher = cache.NewRedisPublisher(client)
		deps.Blacklist = auth.NewRedisBlacklist(client)
	} else {
		deps.Publisher = cache.NopPublisher{}
		deps.Blacklist = auth.NewMemoryBlacklist()
		if cfg.CartDir != "" {
			fileStorage, err := cart.NewFileStorage(cfg.CartDir)
			if err != nil {
				closeAll()
				return deps, func() {}, err
			}
			deps.CartStorage = fileStorage
		} else {
			deps.CartStorage = cart.NewMemoryStorage()
		}
	}

	if cfg.MediaEnabled() {
		uploader, err := util.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			closeAll()
			return deps, func() {}, err
		}
		deps.Media = uploader
	}

	return deps, closeAll, nil
}

func loadSeed(path string) ([]models.Product, error) {
	if path == "" {
		return store.DefaultCatalog()
	}
	seed, err := store.LoadSeedFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load seed file")
	}
	return seed, nil
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		util.LogError("mongo disconnect", err)
	}
}

type ServiceContainer struct {
	Config *config.Config
	Deps   Dependencies

	ProductService services.ProductService
	OrderService   services.OrderService

	Authenticator *middleware.Authenticator

	ProductController  *controllers.ProductController
	ReviewController   *controllers.ReviewController
	CartController     *controllers.CartController
	CheckoutController *controllers.CheckoutController
	OrderController    *controllers.OrderController
	AuthController     *controllers.AuthController
	StatusController   *controllers.StatusController
}

func NewServiceContainer(cfg *config.Config, deps Dependencies) *ServiceContainer {
	if deps.Publisher == nil {
		deps.Publisher = cache.NopPublisher{}
	}

	productService := services.NewProductService(deps.Products, deps.Publisher, deps.Media)
	orderService := services.NewOrderService(deps.Orders, deps.Publisher)
	authenticator := middleware.NewAuthenticator(cfg.JWTSecret, deps.Blacklist)
	timeout := cfg.RequestTimeout

	return &ServiceContainer{
		Config: cfg,
		Deps:   deps,

		ProductService: productService,
		OrderService:   orderService,

		Authenticator: authenticator,

		ProductController:  controllers.InitProductController(productService, timeout),
		ReviewController:   controllers.InitReviewController(productService, timeout),
		CartController:     controllers.InitCartController(deps.CartStorage, timeout),
		CheckoutController: controllers.InitCheckoutController(deps.CartStorage, orderService, checkout.Options{StrictCards: cfg.StrictCards}, timeout),
		OrderController:    controllers.InitOrderController(orderService, timeout),
		AuthController:     controllers.InitAuthController(authenticator),
		StatusController:   controllers.InitStatusController(cfg.Store),
	}
}

// GetProductController returns the product controller instance
func (sc *ServiceContainer) GetProductController() *controllers.ProductController {
	return sc.ProductController
}

// GetReviewController returns the review controller instance
func (sc *ServiceContainer) GetReviewController() *controllers.ReviewController {
	return sc.ReviewController
}

// GetCartController returns the cart controller instance
func (sc *ServiceContainer) GetCartController() *controllers.CartController {
	return sc.CartController
}

// GetCheckoutController returns the checkout controller instance
func (sc *ServiceContainer) GetCheckoutController() *controllers.CheckoutController {
	return sc.CheckoutController
}

// GetOrderController returns the order controller instance
func (sc *ServiceContainer) GetOrderController() *controllers.OrderController {
	return sc.OrderController
}
