// Package main wires the whole upload path together: a signer service in
// front of an S3-compatible bucket, a gateway client talking to it, and an
// uploader tracking a small batch of files end to end.
//
// Run a local MinIO (or point the config at a real bucket), then:
//
//	go run ./example -config signer.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/uploadkit/uploadkit"
	"github.com/uploadkit/uploadkit/pkg/gateway"
	"github.com/uploadkit/uploadkit/pkg/logger"
	"github.com/uploadkit/uploadkit/pkg/preview"
	"github.com/uploadkit/uploadkit/pkg/signer"
)

func main() {
	configPath := flag.String("config", "signer.yaml", "path to signer config")
	addr := flag.String("addr", ":8080", "signer listen address")
	flag.Parse()

	log := logger.New().With("app", "uploadkit-example")

	cfg, err := signer.LoadConfig(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	svc, err := signer.New(cfg)
	if err != nil {
		log.Error("signer init failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           signer.Routes(svc, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("signer listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("signer stopped", "error", err)
		}
	}()
	defer srv.Close()

	client, err := gateway.New(gateway.Config{
		SlotEndpoint:   "http://localhost" + *addr + "/uploads",
		DeleteEndpoint: "http://localhost" + *addr + "/uploads",
	})
	if err != nil {
		log.Error("gateway init failed", "error", err)
		os.Exit(1)
	}

	up, err := uploadkit.New(client,
		uploadkit.WithLogger(log),
		uploadkit.WithMaxCount(5),
		uploadkit.WithOnChange(func(locators []string) {
			log.Info("value changed", slog.Any("locators", locators))
		}),
	)
	if err != nil {
		log.Error("uploader init failed", "error", err)
		os.Exit(1)
	}
	defer up.Close()

	ctx := context.Background()
	ids := up.AddFiles(ctx,
		uploadkit.NewBytesFile("hello.txt", "text/plain", []byte("hello uploadkit")),
		uploadkit.NewBytesFile("pixel.png", "image/png", tinyPNG()),
	)
	log.Info("batch accepted", slog.Int("count", len(ids)))

	up.Wait()

	for _, f := range up.Entries() {
		view := preview.Render(f.DisplayRef, f.MediaKind, f.Phase == uploadkit.PhaseUploading, f.Progress, f.Phase == uploadkit.PhaseDeleting)
		fmt.Printf("%-9s %-30s kind=%s can_delete=%v\n", f.Phase, f.DisplayRef, view.Kind, view.CanDelete)
	}

	if err := up.Validate(uploadkit.Validator{MinCount: 1, MaxCount: 5}); err != nil {
		log.Warn("validation failed", "error", err)
	}

	// Delete everything we just uploaded.
	for _, f := range up.Entries() {
		up.DeleteByID(ctx, f.ID)
	}
	up.Wait()
	log.Info("done", slog.Int("remaining", len(up.Entries())))
}

// tinyPNG is a 1x1 transparent PNG.
func tinyPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
}
