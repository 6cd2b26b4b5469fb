package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"citystore-api-io/api/config"
	"citystore-api-io/api/internal/auth"
	"citystore-api-io/api/internal/container"
	"citystore-api-io/api/internal/routers"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/store"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "citystore",
		Usage: "CityStore catalog, cart and checkout API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before the environment"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
			seedCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("citystore failed")
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, err
	}
	if err := util.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			gin.SetMode(cfg.GinMode)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, closeDeps, err := container.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDeps()

			router := routers.InitRoute(container.NewServiceContainer(cfg, deps))
			server := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				util.LogFields(logrus.Fields{"addr": server.Addr, "store": cfg.Store}).Info("citystore api listening")
				serveErr <- server.ListenAndServe()
			}()

			select {
			case err := <-serveErr:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return errors.Wrap(err, "serve")
			case <-ctx.Done():
			}

			util.LogInfo("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Wrap(server.Shutdown(shutdownCtx), "shutdown")
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for a customer or an admin",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "role", Value: string(models.RoleCustomer), Usage: "customer or admin"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, defaults to CITYSTORE_JWT_TTL"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			role := models.Role(c.String("role"))
			if role != models.RoleAdmin && role != models.RoleCustomer {
				return errors.Errorf("unknown role %q", role)
			}

			ttl := cfg.JWTTTL
			if c.IsSet("ttl") {
				ttl = c.Duration("ttl")
			}

			token, expiresAt, err := auth.GenerateJWT(cfg.JWTSecret, ttl, auth.JWTClaim{
				Id:    c.String("id"),
				Name:  c.String("name"),
				Email: c.String("email"),
				Phone: c.String("phone"),
				Role:  role,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, token)
			fmt.Fprintf(c.App.ErrWriter, "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the seed catalog into MongoDB, skipping products that exist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "YAML seed file, defaults to the built in catalog"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			products, err := store.DefaultCatalog()
			if path := c.String("file"); path != "" {
				products, err = store.LoadSeedFile(path)
			}
			if err != nil {
				return err
			}

			client, err := config.ConnectMongo(c.Context, cfg.MongoURI)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			productStore := store.NewMongoProductStore(client.Database(cfg.MongoDatabase))
			inserted := 0
			for _, p := range products {
				err := productStore.Create(c.Context, p)
				if errors.Is(err, store.ErrDuplicateId) {
					continue
				}
				if err != nil {
					return errors.Wrapf(err, "seed product %s", p.Id)
				}
				inserted++
			}

			util.LogFields(logrus.Fields{"inserted": inserted, "total": len(products)}).Info("seed complete")
			return nil
		},
	}
}
