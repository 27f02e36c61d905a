// Package gateway implements the client side of the signed-URL upload
// contract: it asks an issuance endpoint for a pre-authorized upload slot,
// streams file bytes to that slot with progress reporting, and requests
// deletion of previously uploaded objects.
//
// The package holds no state between calls and never retries on its own;
// callers decide what a failure means.
//
// # Basic Usage
//
//	client := gateway.New(gateway.Config{
//		SlotEndpoint:   "https://api.example.com/uploads",
//		DeleteEndpoint: "https://api.example.com/uploads",
//	})
//
//	slot, err := client.RequestUploadSlot(ctx, "photo.png", "image/png")
//	if err != nil {
//		return err
//	}
//
//	err = client.TransferBytes(ctx, src, slot, func(percent int) {
//		fmt.Printf("\r%d%%", percent)
//	})
package gateway
