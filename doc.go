// Package uploadkit orchestrates multi-file uploads against a signed-URL
// storage backend: it tracks every selected file through its upload
// lifecycle, drives concurrent per-file transfer pipelines, supports
// deletion with a visible transient state, and keeps an externally owned
// ordered value of locators consistent with internal state in both
// controlled and uncontrolled integration modes.
//
// # Basic Usage
//
//	client, _ := gateway.New(gateway.Config{
//		SlotEndpoint:   "https://api.example.com/uploads",
//		DeleteEndpoint: "https://api.example.com/uploads",
//	})
//
//	up, err := uploadkit.New(client,
//		uploadkit.WithMaxCount(5),
//		uploadkit.WithOnChange(func(locators []string) {
//			form.Set("images", locators)
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer up.Close()
//
//	up.AddFiles(ctx, uploadkit.NewBytesFile("photo.png", "image/png", data))
//
// Every mutation of the tracked collection is an atomic step; asynchronous
// completions re-check entry presence before applying their transition, so
// an entry removed mid-flight is simply abandoned.
package uploadkit
