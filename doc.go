// Package zbarcam implements a live camera-feed barcode scanner pipeline.
//
// # Philosophy
//
// "Drop frames, never queue. Latency > Completeness."
//
// A camera delivers frames faster than any decoder can examine them.
// Without backpressure, decode requests queue unboundedly and detection
// latency grows without bound. zbarcam instead keeps exactly one decode in
// flight and drops every frame that arrives meanwhile: latency stays
// bounded, and on a live preview the next frame is never more than a
// fraction of a second away.
//
// # Pipeline
//
//	camera Source → Normalize (luminance) → SymbolDecoder → publisher → Symbols()
//	   (30fps)        frame adapter          decode gateway    UI dispatch
//
// The pipeline runs three execution contexts:
//
//  1. The capture context, owned by the Source. Frame delivery never
//     blocks on decoding.
//  2. A short-lived worker goroutine per accepted frame, at most one at a
//     time (an atomic flag gates dispatch). Normalization and decoding are
//     synchronous CPU-bound calls inside the worker.
//  3. The UI-owned context. Every mutation of the observable symbol list
//     is marshaled through a Dispatcher, so consumer-visible state is only
//     ever written from the designated context.
//
// Because at most one decode runs at a time and frames are dropped rather
// than queued, results publish in dispatch order by construction.
//
// # Basic Usage
//
//	scanner, err := zbarcam.New(zbarcam.Config{
//	    Source:       cam,                    // e.g. camera.NewWebcam(...)
//	    Decoder:      zxingDecoder,           // e.g. zxing.New()
//	    EnabledTypes: []zbarcam.SymbolType{zbarcam.SymbolQRCode},
//	    OnSymbols: func(symbols []zbarcam.Symbol) {
//	        for _, sym := range symbols {
//	            fmt.Println(sym.Type, sym.Text())
//	        }
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := scanner.Start(ctx); err != nil {
//	    log.Fatal(err) // camera unavailable, permission denied, ...
//	}
//	defer scanner.Stop()
//
// Stopping while a decode is in flight is safe: the decode completes and
// its result is silently discarded.
package zbarcam
