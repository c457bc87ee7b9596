package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5"

	"github.com/imrishuroy/go-dispute-reconciler/internal/aws"
	"github.com/imrishuroy/go-dispute-reconciler/internal/config"
	"github.com/imrishuroy/go-dispute-reconciler/internal/disputes"
	"github.com/imrishuroy/go-dispute-reconciler/internal/gateway"
	"github.com/imrishuroy/go-dispute-reconciler/internal/reconcile"
	"github.com/imrishuroy/go-dispute-reconciler/internal/runlock"
	"github.com/imrishuroy/go-dispute-reconciler/internal/staging"
)

const disputesTable = "public.disputes"

func buildDriver(ctx context.Context) (*reconcile.Driver, error) {
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("init aws clients: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	connString := cfg.DB.ConnString()
	d := &reconcile.Driver{
		Staging:  staging.NewStore(clients.S3, cfg.StagingBucket),
		Verifier: gateway.NewBraintreeVerifier(cfg.Gateway.MerchantID, cfg.Gateway.PublicKey, cfg.Gateway.PrivateKey),
		OpenSink: func(ctx context.Context) (reconcile.Sink, func(), error) {
			conn, err := pgx.Connect(ctx, connString)
			if err != nil {
				return nil, nil, err
			}
			closeConn := func() {
				if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
					log.Printf("[worker] close db connection: %v", err)
				}
			}
			return disputes.NewStore(conn, disputesTable), closeConn, nil
		},
		ArchiveBucket:    cfg.ArchiveBucket,
		QuarantineBucket: cfg.QuarantineBucket,
		Metrics:          aws.NewMetricsPublisher(clients.CloudWatch, cfg.MetricsNamespace),
	}
	if cfg.RunLockTable != "" {
		d.Lock = runlock.NewStore(clients.DynamoDB, cfg.RunLockTable, 15*time.Minute)
	}
	return d, nil
}

func handleScheduledEvent(ctx context.Context, event events.CloudWatchEvent) error {
	driver, err := buildDriver(ctx)
	if err != nil {
		return err
	}
	return driver.Run(ctx)
}

func main() {
	// If RUN_LOCAL=true, execute a single reconciliation pass and exit.
	if os.Getenv("RUN_LOCAL") == "true" {
		if err := handleScheduledEvent(context.Background(), events.CloudWatchEvent{}); err != nil {
			log.Fatalf("local run error: %v", err)
		}
		return
	}

	lambda.Start(handleScheduledEvent)
}
